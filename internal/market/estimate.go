// internal/market/estimate.go
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"market-intel/internal/common/validation"
)

func buildEstimatePrompt(market string) string {
	parts := []string{
		fmt.Sprintf("Run a competitive analysis for the %q designated market area.", market),
		"1. Search for the 10 to 15 largest dental service organizations and implant-focused competitors operating in this area.",
		"2. For each one, estimate clinics, general dentists and oral surgeons in this area. When public figures are missing, scale from the organization's footprint in comparable markets.",
		"3. Look up economy denture and tier 1 pricing. When local pricing is missing, use the organization's national average, or -1 if nothing is known.",
		"Reply with a JSON array only. Each element has: name, geographicFocus (National, Regional or Local), clinicCount, dentistCount, surgeonCount, priceDenture, priceTier1Low, priceTier1High.",
	}
	return strings.Join(parts, "\n")
}

// requestEstimate makes exactly one provider call and decodes the reply into
// raw candidates. Every failure is wrapped in one of the package sentinels
// or is the provider's own typed error.
func requestEstimate(ctx context.Context, p Provider, market string) ([]RawCandidate, error) {
	reply, err := p.Generate(ctx, GenerateRequest{
		SystemInstruction: analystInstruction,
		Prompt:            buildEstimatePrompt(market),
		ResponseSchema:    EstimateResponseSchema(),
		Grounding:         true,
	})
	if err != nil {
		return nil, err
	}
	return decodeEstimate(reply)
}

// decodeEstimate turns a model reply into raw candidates. The whole reply is
// rejected when it is not a JSON array of objects with well-typed fields.
func decodeEstimate(reply string) ([]RawCandidate, error) {
	doc := extractJSONArray(reply)
	if doc == "" {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrSchema)
	}

	result, err := estimateShape.ValidateJSON([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrSchema, validation.FormatErrors(result.Errors))
	}

	var wire []wireCandidate
	if err := json.Unmarshal([]byte(doc), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	out := make([]RawCandidate, 0, len(wire))
	for i, w := range wire {
		if field := w.countOutOfRange(); field != "" {
			return nil, fmt.Errorf("%w: [%d].%s: count out of range", ErrSchema, i, field)
		}
		out = append(out, w.raw())
	}
	return out, nil
}

type wireCandidate struct {
	Name              *string     `json:"name"`
	DSOName           *string     `json:"dsoName"`
	GeographicFocus   *string     `json:"geographicFocus"`
	ClinicCount       looseNumber `json:"clinicCount"`
	DentistCount      looseNumber `json:"dentistCount"`
	DentistsPerClinic looseNumber `json:"dentistsPerClinic"`
	SurgeonCount      looseNumber `json:"surgeonCount"`
	PriceDenture      looseNumber `json:"priceDenture"`
	PriceTier1Low     looseNumber `json:"priceTier1Low"`
	PriceTier1High    looseNumber `json:"priceTier1High"`
}

// countOutOfRange names the first count that cannot be held in an int.
func (w wireCandidate) countOutOfRange() string {
	switch {
	case !w.ClinicCount.fitsInt():
		return "clinicCount"
	case !w.DentistCount.fitsInt():
		return "dentistCount"
	case !w.SurgeonCount.fitsInt():
		return "surgeonCount"
	}
	return ""
}

func (w wireCandidate) raw() RawCandidate {
	name := w.Name
	if name == nil || strings.TrimSpace(*name) == "" {
		name = w.DSOName
	}
	return RawCandidate{
		Name:              name,
		GeographicFocus:   w.GeographicFocus,
		ClinicCount:       w.ClinicCount.intPtr(),
		DentistCount:      w.DentistCount.intPtr(),
		DentistsPerClinic: w.DentistsPerClinic.ptr(),
		SurgeonCount:      w.SurgeonCount.intPtr(),
		PriceDenture:      w.PriceDenture.ptr(),
		PriceTier1Low:     w.PriceTier1Low.ptr(),
		PriceTier1High:    w.PriceTier1High.ptr(),
	}
}

// looseNumber accepts a number, a numeric string, "TBD", "" or null.
// Anything without a numeric value is treated as absent.
type looseNumber struct {
	v   float64
	set bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = looseNumber{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.v, n.set = v, true
		}
		return nil
	}
	if err := json.Unmarshal(data, &n.v); err != nil {
		return err
	}
	n.set = true
	return nil
}

func (n looseNumber) ptr() *float64 {
	if !n.set {
		return nil
	}
	v := n.v
	return &v
}

// fitsInt reports whether the rounded value converts to int without
// overflow. An absent value fits.
func (n looseNumber) fitsInt() bool {
	if !n.set {
		return true
	}
	r := math.Round(n.v)
	return r >= math.MinInt && r < math.MaxInt
}

func (n looseNumber) intPtr() *int {
	if !n.set || !n.fitsInt() {
		return nil
	}
	v := int(math.Round(n.v))
	return &v
}
