package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-intel/internal/common/config"
	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/logger"
	"market-intel/internal/market"
)

const austinYAML = `
markets:
  - key: austin
    displayName: Austin, TX
    aliases: ["austin"]
    competitors:
      - name: Capitol Dental
        geographicFocus: Local
        clinicCount: 3
        dentistCount: 7
        surgeonCount: 1
        priceDenture: 600
        priceTier1Low: TBD
        priceTier1High: TBD
`

func writeTrustedFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trusted.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		APIs: config.APIsConfig{GenAI: config.GenAIConfig{
			APIKey:  "test-key",
			Model:   "gemini-2.5-flash",
			Timeout: 1000,
		}},
		Market: config.MarketConfig{Cache: config.CacheConfig{TTL: 60000}},
	}
}

// ==========================
// Trusted store
// ==========================

func TestLoadTrustedStore_BuiltinOnly(t *testing.T) {
	store, err := LoadTrustedStore(context.Background(), config.MarketConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, len(market.BuiltinTables()), store.Len())

	_, ok := store.Table("dfw")
	assert.True(t, ok)
}

func TestLoadTrustedStore_FileAndDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM trusted_markets").
		WillReturnRows(sqlmock.NewRows([]string{"market_key", "display_name", "aliases"}).
			AddRow("okc", "Oklahoma City", `{"oklahoma city",okc}`))
	mock.ExpectQuery("FROM trusted_competitors").
		WillReturnRows(sqlmock.NewRows([]string{
			"market_key", "name", "geographic_focus", "clinic_count", "dentist_count",
			"surgeon_count", "price_denture", "price_tier1_low", "price_tier1_high",
		}).AddRow("okc", "Red Dirt Dental", "Regional", 4, 10, 2, nil, nil, nil))

	mc := config.MarketConfig{TrustedFile: writeTrustedFile(t, austinYAML)}
	store, err := LoadTrustedStore(context.Background(), mc, db)
	require.NoError(t, err)

	for _, key := range []string{"dfw", "austin", "okc"} {
		_, ok := store.Table(key)
		assert.True(t, ok, key)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadTrustedStore_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) config.MarketConfig
	}{
		{
			name: "missing file",
			setup: func(t *testing.T) config.MarketConfig {
				return config.MarketConfig{TrustedFile: filepath.Join(t.TempDir(), "absent.yaml")}
			},
		},
		{
			name: "table without aliases",
			setup: func(t *testing.T) config.MarketConfig {
				body := "markets:\n  - key: empty\n    competitors:\n      - name: X\n        clinicCount: 1\n"
				return config.MarketConfig{TrustedFile: writeTrustedFile(t, body)}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrustedStore(context.Background(), tt.setup(t), nil)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTrustedTableLoadFailed))
		})
	}
}

func TestLoadTrustedStore_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM trusted_markets").WillReturnError(errors.New("permission denied"))

	_, err = LoadTrustedStore(context.Background(), config.MarketConfig{}, db)
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTrustedTableLoadFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "postgres")
}

// ==========================
// Engine
// ==========================

func TestNewEngine_LockedMarketWithoutNetwork(t *testing.T) {
	cfg := testConfig()
	cfg.Market.TrustedFile = writeTrustedFile(t, austinYAML)

	e, err := NewEngine(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, "gemini-2.5-flash", e.Provider.Model())

	res := e.Resolver.Resolve(context.Background(), "Austin")
	assert.Equal(t, market.SourceTrusted, res.Source)
	assert.Equal(t, "austin", res.TableKey)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Capitol Dental", res.Records[0].Name)
}

func TestNewEngine_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Market.Cache.Enabled = true
	cfg.Database.Redis.Address = mr.Addr()

	e, err := NewEngine(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.NoError(t, e.Close())
}

func TestNewEngine_RequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.APIs.GenAI.APIKey = ""

	_, err := NewEngine(context.Background(), cfg, nil)
	assert.Error(t, err)
}
