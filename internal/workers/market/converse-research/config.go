// internal/workers/market/converse-research/config.go
package converseresearch

import "time"

type Config struct {
	Timeout time.Duration
	// MaxHistory keeps only the most recent turns.
	MaxHistory int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    45 * time.Second,
		MaxHistory: 20,
	}
}
