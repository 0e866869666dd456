package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/infra/metrics"
	red "club-loyalty/internal/infra/redis"
)

var _ repository.PromotionRepository = (*promotionRepoCacheDecorator)(nil)

// promotionRepoCacheDecorator caches the full promotion list with a short
// TTL and answers ListActive by filtering it in memory. Promotions change
// rarely but windows open and close, so the TTL stays small.
type promotionRepoCacheDecorator struct {
	inner repository.PromotionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPromotionRepoCacheDecorator(inner repository.PromotionRepository, cache red.RedisClient) repository.PromotionRepository {
	return &promotionRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   time.Minute,
	}
}

const promotionListKey = "promotions:all"

func (d *promotionRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error) {
	val, err := d.cache.Get(ctx, promotionListKey)
	if err == nil {
		var promos []*model.Promotion
		if json.Unmarshal([]byte(val), &promos) == nil {
			metrics.IncCacheRequest("promotion", "hit")
			return promos, nil
		}
	}

	metrics.IncCacheRequest("promotion", "miss")
	promos, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(promos); err == nil {
		_ = d.cache.Set(ctx, promotionListKey, b, d.ttl)
	}
	return promos, nil
}

func (d *promotionRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error) {
	all, err := d.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	var active []*model.Promotion
	for _, p := range all {
		if p.AppliesAt(at) {
			active = append(active, p)
		}
	}
	return active, nil
}

func (d *promotionRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	key := fmt.Sprintf("promotion:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.Promotion
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("promotion", "hit")
			return &p, nil
		}
	}

	metrics.IncCacheRequest("promotion", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

func (d *promotionRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	_ = d.cache.Del(ctx, promotionListKey, fmt.Sprintf("promotion:%s", p.ID))
	return d.inner.Save(ctx, tx, p)
}
