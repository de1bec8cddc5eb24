// internal/market/normalize.go
package market

import (
	"math"
	"strings"
)

// RepairReport counts the fields normalization had to default or repair.
// A price that is absent or the -1 marker is not a repair; a zero or other
// negative price is.
type RepairReport struct {
	Name     int `json:"name,omitempty"`
	Focus    int `json:"focus,omitempty"`
	Clinics  int `json:"clinics,omitempty"`
	Dentists int `json:"dentists,omitempty"`
	Surgeons int `json:"surgeons,omitempty"`
	Prices   int `json:"prices,omitempty"`
}

// Total is the number of repaired fields.
func (r RepairReport) Total() int {
	return r.Name + r.Focus + r.Clinics + r.Dentists + r.Surgeons + r.Prices
}

func (r RepairReport) fields() map[string]int {
	return map[string]int{
		"name":     r.Name,
		"focus":    r.Focus,
		"clinics":  r.Clinics,
		"dentists": r.Dentists,
		"surgeons": r.Surgeons,
		"prices":   r.Prices,
	}
}

// Normalize converts raw candidates into canonical records. It never drops
// a candidate and preserves order.
func Normalize(raw []RawCandidate) []CompetitorRecord {
	records, _ := NormalizeWithReport(raw)
	return records
}

// NormalizeWithReport is Normalize plus a count of the repairs it made.
func NormalizeWithReport(raw []RawCandidate) ([]CompetitorRecord, RepairReport) {
	var report RepairReport
	records := make([]CompetitorRecord, 0, len(raw))

	for _, c := range raw {
		name := ""
		if c.Name != nil {
			name = strings.TrimSpace(*c.Name)
		}
		if name == "" {
			report.Name++
		}

		focus := FocusLocal
		if c.GeographicFocus == nil {
			report.Focus++
		} else if f, ok := ParseGeographicFocus(*c.GeographicFocus); ok {
			focus = f
		} else {
			report.Focus++
		}

		clinics := 0
		if c.ClinicCount != nil {
			clinics = *c.ClinicCount
		}
		if clinics < 1 {
			report.Clinics++
		}

		dentists := 0
		if c.DentistCount != nil {
			dentists = *c.DentistCount
		}
		if dentists < 0 {
			report.Dentists++
		}

		surgeons := 0
		if c.SurgeonCount != nil {
			surgeons = *c.SurgeonCount
		}
		if surgeons < 0 {
			report.Surgeons++
		}

		records = append(records, NewCompetitorRecord(
			name, focus, clinics, dentists, surgeons,
			normalizePrice(c.PriceDenture, &report),
			normalizePrice(c.PriceTier1Low, &report),
			normalizePrice(c.PriceTier1High, &report),
		))
	}

	return records, report
}

func normalizePrice(v *float64, report *RepairReport) Price {
	if v == nil || *v == UnknownPriceSentinel {
		return Unknown()
	}
	if *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		report.Prices++
		return Unknown()
	}
	return Known(*v)
}
