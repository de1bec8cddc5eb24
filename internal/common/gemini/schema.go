package gemini

import (
	"strings"

	"google.golang.org/genai"
)

// toSchema converts the map form of a JSON Schema into the SDK type. Only
// the keywords Gemini understands are carried over.
func toSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}

	if t, ok := m["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if f, ok := m["format"].(string); ok {
		s.Format = f
	}
	s.Enum = stringList(m["enum"])
	s.Required = stringList(m["required"])

	if v, ok := number(m["minimum"]); ok {
		s.Minimum = &v
	}
	if v, ok := number(m["maximum"]); ok {
		s.Maximum = &v
	}
	if n, ok := m["nullable"].(bool); ok {
		s.Nullable = &n
	}

	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toSchema(items)
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if p, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = toSchema(p)
			}
		}
	}

	return s
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
