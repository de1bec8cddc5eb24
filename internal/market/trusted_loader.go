// internal/market/trusted_loader.go
package market

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

type trustedFile struct {
	Markets []trustedFileMarket `yaml:"markets"`
}

type trustedFileMarket struct {
	Key         string                  `yaml:"key"`
	DisplayName string                  `yaml:"displayName"`
	Aliases     []string                `yaml:"aliases"`
	Competitors []trustedFileCompetitor `yaml:"competitors"`
}

type trustedFileCompetitor struct {
	Name            string `yaml:"name"`
	DSOName         string `yaml:"dsoName"`
	GeographicFocus string `yaml:"geographicFocus"`
	ClinicCount     int    `yaml:"clinicCount"`
	DentistCount    int    `yaml:"dentistCount"`
	SurgeonCount    int    `yaml:"surgeonCount"`
	PriceDenture    Price  `yaml:"priceDenture"`
	PriceTier1Low   Price  `yaml:"priceTier1Low"`
	PriceTier1High  Price  `yaml:"priceTier1High"`
}

// LoadTrustedFile reads trusted tables from a YAML file. Any
// dentistsPerClinic value in the file is ignored and recomputed.
func LoadTrustedFile(path string) ([]TrustedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trusted tables: %w", err)
	}
	return ParseTrustedYAML(data)
}

// ParseTrustedYAML decodes the trusted-table file format.
func ParseTrustedYAML(data []byte) ([]TrustedTable, error) {
	var f trustedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse trusted tables: %w", err)
	}

	tables := make([]TrustedTable, 0, len(f.Markets))
	for _, m := range f.Markets {
		t := TrustedTable{
			Key:         m.Key,
			DisplayName: m.DisplayName,
			Aliases:     m.Aliases,
			Records:     make([]CompetitorRecord, 0, len(m.Competitors)),
		}
		for _, c := range m.Competitors {
			name := c.Name
			if name == "" {
				name = c.DSOName
			}
			focus, _ := ParseGeographicFocus(c.GeographicFocus)
			t.Records = append(t.Records, NewCompetitorRecord(
				name, focus, c.ClinicCount, c.DentistCount, c.SurgeonCount,
				c.PriceDenture, c.PriceTier1Low, c.PriceTier1High,
			))
		}
		tables = append(tables, t)
	}
	return tables, nil
}

const (
	selectTrustedMarkets = `SELECT market_key, display_name, aliases
		FROM trusted_markets
		ORDER BY market_key`

	selectTrustedCompetitors = `SELECT market_key, name, geographic_focus, clinic_count, dentist_count,
		surgeon_count, price_denture, price_tier1_low, price_tier1_high
		FROM trusted_competitors
		ORDER BY market_key, position`
)

// LoadTrustedPostgres reads trusted tables from PostgreSQL. It is meant to
// run once during startup.
func LoadTrustedPostgres(ctx context.Context, db *sql.DB) ([]TrustedTable, error) {
	rows, err := db.QueryContext(ctx, selectTrustedMarkets)
	if err != nil {
		return nil, fmt.Errorf("query trusted markets: %w", err)
	}

	var tables []TrustedTable
	index := make(map[string]int)
	for rows.Next() {
		var (
			t       TrustedTable
			display sql.NullString
			aliases pq.StringArray
		)
		if err := rows.Scan(&t.Key, &display, &aliases); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan trusted market: %w", err)
		}
		t.DisplayName = display.String
		t.Aliases = []string(aliases)
		index[t.Key] = len(tables)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate trusted markets: %w", err)
	}
	rows.Close()

	crows, err := db.QueryContext(ctx, selectTrustedCompetitors)
	if err != nil {
		return nil, fmt.Errorf("query trusted competitors: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var (
			key, name, focusText        string
			clinics, dentists, surgeons int
			denture, low, high          sql.NullFloat64
		)
		if err := crows.Scan(&key, &name, &focusText, &clinics, &dentists, &surgeons, &denture, &low, &high); err != nil {
			return nil, fmt.Errorf("scan trusted competitor: %w", err)
		}
		i, ok := index[key]
		if !ok {
			return nil, fmt.Errorf("trusted competitor %q references unknown market %q", name, key)
		}
		focus, _ := ParseGeographicFocus(focusText)
		tables[i].Records = append(tables[i].Records, NewCompetitorRecord(
			name, focus, clinics, dentists, surgeons,
			nullPrice(denture), nullPrice(low), nullPrice(high),
		))
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trusted competitors: %w", err)
	}

	return tables, nil
}

func nullPrice(v sql.NullFloat64) Price {
	if !v.Valid {
		return Unknown()
	}
	return Known(v.Float64)
}
