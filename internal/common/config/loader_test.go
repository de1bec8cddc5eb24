package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range credentialEnvVars {
		t.Setenv(name, "")
	}
	t.Setenv("APIS_GENAI_API_KEY", "")
}

// ==========================
// Loading
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	clearCredentialEnv(t)
	path := writeConfig(t, `
app:
  name: market-intel
workers:
  resolve-market:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.APIs.GenAI.Model)
	assert.Equal(t, 30000, cfg.APIs.GenAI.Timeout)
	assert.Equal(t, 24*60*60*1000, cfg.Market.Cache.TTL)
	assert.False(t, cfg.Market.Cache.Enabled)
	assert.Equal(t, 0, cfg.Market.LockedDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	w := cfg.Workers["resolve-market"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 45000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("TEST_GEMINI_KEY", "from-placeholder")

	path := writeConfig(t, `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
apis:
  genai:
    api_key: ${TEST_GEMINI_KEY}
    model: gemini-2.0-flash
    timeout: 12000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "from-placeholder", cfg.APIs.GenAI.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.APIs.GenAI.Model)
	assert.Equal(t, 12000, cfg.APIs.GenAI.Timeout)
}

func TestLoadFromFile_CredentialFallback(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantKey string
	}{
		{
			name:    "API_KEY first",
			env:     map[string]string{"API_KEY": "a", "GENAI_API_KEY": "b", "GEMINI_API_KEY": "c"},
			wantKey: "a",
		},
		{
			name:    "GENAI_API_KEY second",
			env:     map[string]string{"GENAI_API_KEY": "b", "GEMINI_API_KEY": "c"},
			wantKey: "b",
		},
		{
			name:    "GEMINI_API_KEY last",
			env:     map[string]string{"GEMINI_API_KEY": "c"},
			wantKey: "c",
		},
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantKey: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: market-intel\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, cfg.APIs.GenAI.APIKey)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "cache without redis",
			body:    "market:\n  cache:\n    enabled: true\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "postgres trusted tables without host",
			body:    "market:\n  trusted_postgres: true\n",
			wantErr: "database.postgres.host",
		},
		{
			name:    "negative locked delay",
			body:    "market:\n  locked_delay: -5\n",
			wantErr: "market.locked_delay",
		},
		{
			name: "cache with redis",
			body: "market:\n  cache:\n    enabled: true\ndatabase:\n  redis:\n    address: localhost:6379\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateForWorkers(), "camunda.broker_address")

	cfg.Camunda.BrokerAddress = "localhost:26500"
	assert.ErrorContains(t, cfg.ValidateForWorkers(), "GEMINI_API_KEY")

	cfg.APIs.GenAI.APIKey = "key"
	assert.NoError(t, cfg.ValidateForWorkers())
}

// ==========================
// Helpers
// ==========================

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{
		APIs: APIsConfig{GenAI: GenAIConfig{Timeout: 20000}},
		Workers: map[string]WorkerConfig{
			"converse-research": {Enabled: false, MaxJobsActive: 2, Timeout: 9000, MaxRetries: 1},
		},
	}

	got := GetWorkerConfig(cfg, "converse-research")
	assert.Equal(t, 2, got.MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "converse-research"))

	fallback := GetWorkerConfig(cfg, "resolve-market")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 35000, fallback.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "resolve-market"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "market_intel", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=market_intel sslmode=disable", p.GetDSN())
}
