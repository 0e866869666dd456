//go:build !integration

package postgres

import (
	"context"
	"time"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	red "club-loyalty/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerTierRepo mocks the database repository that the tier decorator wraps.
type mockInnerTierRepo struct {
	SaveFunc    func(ctx context.Context, tx repository.Tx, tier *model.Tier) error
	ListAllFunc func(ctx context.Context, tx repository.Tx) ([]model.Tier, error)
}

func (m *mockInnerTierRepo) Save(ctx context.Context, tx repository.Tx, tier *model.Tier) error {
	return m.SaveFunc(ctx, tx, tier)
}
func (m *mockInnerTierRepo) ListAll(ctx context.Context, tx repository.Tx) ([]model.Tier, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockInnerPromotionRepo mocks the database repository that the promotion
// decorator wraps.
type mockInnerPromotionRepo struct {
	SaveFunc       func(ctx context.Context, tx repository.Tx, p *model.Promotion) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error)
	ListAllFunc    func(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error)
}

func (m *mockInnerPromotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerPromotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPromotionRepo) ListActive(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error) {
	return m.ListActiveFunc(ctx, tx, at)
}
func (m *mockInnerPromotionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error) {
	return m.ListAllFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
