// internal/market/cache.go
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EstimateCache stores normalized estimates per market. A miss is reported
// as (nil, false, nil).
type EstimateCache interface {
	Get(ctx context.Context, normalizedMarket string) ([]CompetitorRecord, bool, error)
	Set(ctx context.Context, normalizedMarket string, records []CompetitorRecord) error
}

const (
	estimateKeyPrefix  = "market:estimate:"
	DefaultEstimateTTL = 24 * time.Hour
)

// RedisCache is an EstimateCache backed by Redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultEstimateTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func estimateKey(normalizedMarket string) string {
	return estimateKeyPrefix + normalizedMarket
}

func (c *RedisCache) Get(ctx context.Context, normalizedMarket string) ([]CompetitorRecord, bool, error) {
	data, err := c.client.Get(ctx, estimateKey(normalizedMarket)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("estimate cache get: %w", err)
	}

	var stored []CompetitorRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, fmt.Errorf("estimate cache decode: %w", err)
	}
	if len(stored) == 0 {
		return nil, false, nil
	}

	// entries may predate the current rules or have been edited by hand
	records := make([]CompetitorRecord, 0, len(stored))
	for _, rec := range stored {
		focus, _ := ParseGeographicFocus(string(rec.GeographicFocus))
		records = append(records, NewCompetitorRecord(
			rec.Name, focus, rec.ClinicCount, rec.DentistCount, rec.SurgeonCount,
			rec.PriceDenture, rec.PriceTier1Low, rec.PriceTier1High,
		))
	}
	return records, true, nil
}

func (c *RedisCache) Set(ctx context.Context, normalizedMarket string, records []CompetitorRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("estimate cache encode: %w", err)
	}
	if err := c.client.Set(ctx, estimateKey(normalizedMarket), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("estimate cache set: %w", err)
	}
	return nil
}
