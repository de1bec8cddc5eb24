// internal/market/trusted.go
package market

import (
	"fmt"
	"sort"
	"strings"
)

// TrustedTable is a hand-curated competitor table for one locked market.
type TrustedTable struct {
	Key         string
	DisplayName string
	Aliases     []string
	Records     []CompetitorRecord
}

// TrustedStore holds every locked market. It is built once and never
// mutated afterwards, so it is safe for any number of concurrent readers.
type TrustedStore struct {
	tables map[string]TrustedTable
	keys   []string
}

// NewTrustedStore builds a store from the given tables. A later table with
// the same key replaces an earlier one.
func NewTrustedStore(tables ...TrustedTable) (*TrustedStore, error) {
	s := &TrustedStore{tables: make(map[string]TrustedTable, len(tables))}

	for _, t := range tables {
		key := strings.ToLower(strings.TrimSpace(t.Key))
		if key == "" {
			return nil, fmt.Errorf("trusted table %q: key is required", t.DisplayName)
		}

		aliases := make([]string, 0, len(t.Aliases))
		for _, a := range t.Aliases {
			a = normalizeMarket(a)
			if a != "" {
				aliases = append(aliases, a)
			}
		}
		if len(aliases) == 0 {
			return nil, fmt.Errorf("trusted table %q: at least one alias is required", key)
		}
		if len(t.Records) == 0 {
			return nil, fmt.Errorf("trusted table %q: no records", key)
		}

		display := t.DisplayName
		if display == "" {
			display = key
		}

		s.tables[key] = TrustedTable{
			Key:         key,
			DisplayName: display,
			Aliases:     aliases,
			Records:     copyRecords(t.Records),
		}
	}

	s.keys = make([]string, 0, len(s.tables))
	for k := range s.tables {
		s.keys = append(s.keys, k)
	}
	sort.Strings(s.keys)

	return s, nil
}

// DefaultTrustedStore returns a store with only the built-in tables.
func DefaultTrustedStore() *TrustedStore {
	s, err := NewTrustedStore(BuiltinTables()...)
	if err != nil {
		panic(err)
	}
	return s
}

// Table returns a copy of the table stored under key.
func (s *TrustedStore) Table(key string) (TrustedTable, bool) {
	t, ok := s.tables[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return TrustedTable{}, false
	}
	t.Aliases = append([]string(nil), t.Aliases...)
	t.Records = copyRecords(t.Records)
	return t, true
}

// Tables returns copies of all tables ordered by key.
func (s *TrustedStore) Tables() []TrustedTable {
	out := make([]TrustedTable, 0, len(s.keys))
	for _, k := range s.keys {
		t, _ := s.Table(k)
		out = append(out, t)
	}
	return out
}

func (s *TrustedStore) Len() int {
	return len(s.tables)
}

// BuiltinTables returns the trusted tables compiled into the binary.
func BuiltinTables() []TrustedTable {
	return []TrustedTable{dfwTable()}
}

func dfwTable() TrustedTable {
	tbd := Unknown()
	usd := Known

	return TrustedTable{
		Key:         "dfw",
		DisplayName: "Dallas-Fort Worth",
		Aliases:     []string{"dallas", "dfw", "fort worth"},
		Records: []CompetitorRecord{
			NewCompetitorRecord("Ideal Dental (DECA)", FocusNational, 65, 136, 12, usd(650), usd(1000), usd(1500)),
			NewCompetitorRecord("Smile Brands", FocusNational, 51, 50, 8, usd(650), usd(950), usd(1350)),
			NewCompetitorRecord("Jefferson Dental", FocusRegional, 35, 40, 6, usd(550), usd(699), usd(1100)),
			NewCompetitorRecord("Pacific Dental (PDS)", FocusNational, 35, 38, 10, usd(700), usd(1100), usd(1600)),
			NewCompetitorRecord("Heartland Dental", FocusNational, 30, 45, 8, usd(1100), usd(1100), usd(1600)),
			NewCompetitorRecord("AD&I/DDS", FocusNational, 22, 45, 6, usd(599), usd(800), usd(1200)),
			NewCompetitorRecord("Aspen Dental", FocusNational, 20, 19, 4, usd(499), usd(1100), usd(1400)),
			NewCompetitorRecord("Great Expressions", FocusNational, 8, 8, 2, usd(850), usd(850), usd(1250)),
			NewCompetitorRecord("Sage Dental", FocusRegional, 6, 6, 1, usd(800), usd(900), usd(1350)),
			NewCompetitorRecord("Archpoint ID", FocusLocal, 3, 5, 2, tbd, usd(1500), usd(3000)),
			NewCompetitorRecord("ClearChoice", FocusLocal, 3, 3, 3, tbd, tbd, tbd),
			NewCompetitorRecord("Texas Implant & Dental", FocusLocal, 2, 4, 1, usd(895), usd(895), usd(1700)),
			NewCompetitorRecord("Fast New Smile", FocusLocal, 2, 3, 3, tbd, tbd, tbd),
			NewCompetitorRecord("Nuvia", FocusLocal, 2, 4, 4, tbd, usd(2500), usd(3000)),
			NewCompetitorRecord("New Choice Dentures", FocusLocal, 1, 3, 1, usd(550), usd(795), usd(1500)),
		},
	}
}
