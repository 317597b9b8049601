package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/subscription-service/internal/domain"
)

const (
	activePlansKey = "plans:active"
	statsKey       = "subscriptions:stats"

	activePlansTTL = 5 * time.Minute
	statsTTL       = time.Minute
)

// Catalog caches the public plan listing and the subscription stats in
// Redis. Every method degrades to a miss when Redis is unreachable; the
// database stays the system of record.
type Catalog struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCatalog constructs the cache.
func NewCatalog(client *redis.Client, logger *zap.Logger) *Catalog {
	return &Catalog{client: client, logger: logger}
}

// GetActivePlans returns the cached public plan listing, or ok=false on miss.
func (c *Catalog) GetActivePlans(ctx context.Context) ([]domain.Plan, bool) {
	var plans []domain.Plan
	if !c.get(ctx, activePlansKey, &plans) {
		return nil, false
	}
	return plans, true
}

// SetActivePlans stores the public plan listing.
func (c *Catalog) SetActivePlans(ctx context.Context, plans []domain.Plan) {
	c.set(ctx, activePlansKey, plans, activePlansTTL)
}

// InvalidatePlans drops the cached listing after any plan write.
func (c *Catalog) InvalidatePlans(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activePlansKey).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("key", activePlansKey), zap.Error(err))
	}
}

// GetStats returns cached status counts, or ok=false on miss.
func (c *Catalog) GetStats(ctx context.Context) (map[domain.SubscriptionStatus]int, bool) {
	var stats map[domain.SubscriptionStatus]int
	if !c.get(ctx, statsKey, &stats) {
		return nil, false
	}
	return stats, true
}

// SetStats stores status counts with a short TTL; subscriptions churn
// constantly, so staleness is bounded by the TTL rather than invalidation.
func (c *Catalog) SetStats(ctx context.Context, stats map[domain.SubscriptionStatus]int) {
	c.set(ctx, statsKey, stats, statsTTL)
}

func (c *Catalog) get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Catalog) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
