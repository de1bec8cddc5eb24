// internal/market/jsonutil.go
package market

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencePattern  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	arrayOpening  = regexp.MustCompile(`^\[\s*[{\]]`)
	danglingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSONArray pulls the first array of objects out of a model reply
// that may wrap it in a markdown fence or surround it with prose. Text after
// the array, such as bracketed citations, is ignored. It returns "" when the
// reply holds no such array.
func extractJSONArray(reply string) string {
	return extractJSONValue(reply, '[', arrayOpening.MatchString)
}

// extractJSONObject is extractJSONArray for a single object.
func extractJSONObject(reply string) string {
	return extractJSONValue(reply, '{', nil)
}

func extractJSONValue(reply string, open byte, accept func(string) bool) string {
	for _, m := range fencePattern.FindAllStringSubmatch(reply, -1) {
		if doc := firstJSONValue(m[1], open, accept); doc != "" {
			return doc
		}
	}
	return firstJSONValue(reply, open, accept)
}

// firstJSONValue decodes one value at each occurrence of open in turn and
// returns the first that parses and is accepted.
func firstJSONValue(s string, open byte, accept func(string) bool) string {
	for i := 0; i < len(s); i++ {
		if s[i] != open {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(tidyJSON(s[i:]))).Decode(&raw); err != nil {
			continue
		}
		doc := string(raw)
		if accept == nil || accept(doc) {
			return doc
		}
	}
	return ""
}

func tidyJSON(raw string) string {
	return danglingComma.ReplaceAllString(strings.TrimSpace(raw), "$1")
}
