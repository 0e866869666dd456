package postgres

import (
	"context"
	"encoding/json"
	"time"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/infra/metrics"
	red "club-loyalty/internal/infra/redis"
)

var _ repository.TierRepository = (*tierRepoCacheDecorator)(nil)

// tierRepoCacheDecorator caches the tier table in redis. Tiers are immutable
// reference data, so a long TTL is fine; writes invalidate anyway.
type tierRepoCacheDecorator struct {
	inner repository.TierRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTierRepoCacheDecorator(inner repository.TierRepository, cache red.RedisClient) repository.TierRepository {
	return &tierRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   24 * time.Hour,
	}
}

const tierListKey = "tiers:all"

func (d *tierRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]model.Tier, error) {
	val, err := d.cache.Get(ctx, tierListKey)
	if err == nil {
		var tiers []model.Tier
		if json.Unmarshal([]byte(val), &tiers) == nil {
			metrics.IncCacheRequest("tier", "hit")
			return tiers, nil
		}
	}

	metrics.IncCacheRequest("tier", "miss")
	tiers, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(tiers); err == nil {
		_ = d.cache.Set(ctx, tierListKey, b, d.ttl)
	}
	return tiers, nil
}

func (d *tierRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, tier *model.Tier) error {
	_ = d.cache.Del(ctx, tierListKey)
	return d.inner.Save(ctx, tx, tier)
}
