// internal/market/model.go
package market

import (
	"math"
	"strings"
)

// GeographicFocus classifies how widely a competitor operates.
type GeographicFocus string

const (
	FocusNational GeographicFocus = "National"
	FocusRegional GeographicFocus = "Regional"
	FocusLocal    GeographicFocus = "Local"
)

// ParseGeographicFocus is case-insensitive. Anything unrecognized is Local,
// the narrowest classification.
func ParseGeographicFocus(s string) (GeographicFocus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "national":
		return FocusNational, true
	case "regional":
		return FocusRegional, true
	case "local":
		return FocusLocal, true
	default:
		return FocusLocal, false
	}
}

// UnknownCompetitorName replaces a missing organization name.
const UnknownCompetitorName = "Unknown"

// CompetitorRecord is the canonical unit returned for a market.
type CompetitorRecord struct {
	Name              string          `json:"name" yaml:"name"`
	GeographicFocus   GeographicFocus `json:"geographicFocus" yaml:"geographicFocus"`
	ClinicCount       int             `json:"clinicCount" yaml:"clinicCount"`
	DentistCount      int             `json:"dentistCount" yaml:"dentistCount"`
	DentistsPerClinic float64         `json:"dentistsPerClinic" yaml:"dentistsPerClinic"`
	SurgeonCount      int             `json:"surgeonCount" yaml:"surgeonCount"`
	PriceDenture      Price           `json:"priceDenture" yaml:"priceDenture"`
	PriceTier1Low     Price           `json:"priceTier1Low" yaml:"priceTier1Low"`
	PriceTier1High    Price           `json:"priceTier1High" yaml:"priceTier1High"`
}

// NewCompetitorRecord builds a record with counts clamped and the
// dentists-per-clinic ratio derived from the clamped counts.
func NewCompetitorRecord(name string, focus GeographicFocus, clinics, dentists, surgeons int, denture, tier1Low, tier1High Price) CompetitorRecord {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownCompetitorName
	}
	if focus == "" {
		focus = FocusLocal
	}
	if clinics < 1 {
		clinics = 1
	}
	if dentists < 0 {
		dentists = 0
	}
	if surgeons < 0 {
		surgeons = 0
	}

	return CompetitorRecord{
		Name:              name,
		GeographicFocus:   focus,
		ClinicCount:       clinics,
		DentistCount:      dentists,
		DentistsPerClinic: DentistsPerClinic(dentists, clinics),
		SurgeonCount:      surgeons,
		PriceDenture:      denture,
		PriceTier1Low:     tier1Low,
		PriceTier1High:    tier1High,
	}
}

// DentistsPerClinic returns dentists/max(clinics,1) rounded to 2 decimals.
func DentistsPerClinic(dentists, clinics int) float64 {
	if clinics < 1 {
		clinics = 1
	}
	return math.Round(float64(dentists)/float64(clinics)*100) / 100
}

// CompetitorDetail holds the named practitioners behind one competitor.
type CompetitorDetail struct {
	Name           string   `json:"name"`
	DentistNames   []string `json:"dentistNames"`
	SurgeonNames   []string `json:"surgeonNames"`
	EvidenceSource string   `json:"evidenceSource"`
}

const (
	// EvidenceUnverified is used when the provider cites nothing.
	EvidenceUnverified = "Unverified / AI-estimated"
	// EvidenceLookupFailed is used when the detail lookup fails outright.
	EvidenceLookupFailed = "AI Lookup Failed"
)

// ChatTurn is one prior message in a research conversation.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// RawCandidate is one loosely-typed object from an estimate response.
// Nil fields were absent upstream.
type RawCandidate struct {
	Name              *string
	GeographicFocus   *string
	ClinicCount       *int
	DentistCount      *int
	DentistsPerClinic *float64
	SurgeonCount      *int
	PriceDenture      *float64
	PriceTier1Low     *float64
	PriceTier1High    *float64
}

func copyRecords(in []CompetitorRecord) []CompetitorRecord {
	out := make([]CompetitorRecord, len(in))
	copy(out, in)
	return out
}
