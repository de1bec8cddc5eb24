// internal/market/detail.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

func buildDetailPrompt(market, competitor string) string {
	parts := []string{
		fmt.Sprintf("Research %q in the %q market.", competitor, market),
		"Reply with a single JSON object only, with these keys:",
		"- name (string)",
		"- dentistNames (array of strings: practitioner names found in public records)",
		"- surgeonNames (array of strings)",
		"- evidenceSource (string: URL or citation backing the names)",
	}
	return strings.Join(parts, "\n")
}

type wireDetail struct {
	Name           string   `json:"name"`
	DSOName        string   `json:"dsoName"`
	DentistNames   []string `json:"dentistNames"`
	SurgeonNames   []string `json:"surgeonNames"`
	EvidenceSource string   `json:"evidenceSource"`
}

func requestDetail(ctx context.Context, p Provider, market, competitor string) (CompetitorDetail, error) {
	reply, err := p.Generate(ctx, GenerateRequest{
		SystemInstruction: analystInstruction,
		Prompt:            buildDetailPrompt(market, competitor),
		Grounding:         true,
	})
	if err != nil {
		return CompetitorDetail{}, err
	}
	return decodeDetail(reply, competitor)
}

func decodeDetail(reply, competitor string) (CompetitorDetail, error) {
	doc := extractJSONObject(reply)
	if doc == "" {
		return CompetitorDetail{}, fmt.Errorf("%w: no JSON object in reply", ErrSchema)
	}

	var w wireDetail
	if err := json.Unmarshal([]byte(doc), &w); err != nil {
		return CompetitorDetail{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	d := CompetitorDetail{
		Name:           strings.TrimSpace(w.Name),
		DentistNames:   cleanNames(w.DentistNames),
		SurgeonNames:   cleanNames(w.SurgeonNames),
		EvidenceSource: strings.TrimSpace(w.EvidenceSource),
	}
	if d.Name == "" {
		d.Name = strings.TrimSpace(w.DSOName)
	}
	if d.Name == "" {
		d.Name = competitor
	}
	if d.EvidenceSource == "" {
		d.EvidenceSource = EvidenceUnverified
	}
	return d, nil
}

// failedDetail is returned whenever the lookup cannot produce an answer.
func failedDetail(competitor string) CompetitorDetail {
	return CompetitorDetail{
		Name:           competitor,
		DentistNames:   []string{},
		SurgeonNames:   []string{},
		EvidenceSource: EvidenceLookupFailed,
	}
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
