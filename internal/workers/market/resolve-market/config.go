// internal/workers/market/resolve-market/config.go
package resolvemarket

import "time"

type Config struct {
	// Timeout bounds the whole job, provider call included.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
