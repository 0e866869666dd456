//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// --- Mock Repositories (Ports) ---

type memCardRepo struct {
	repository.CardRepository // Embed interface for forward compatibility
	mu                        sync.Mutex
	cards                     map[string]*model.Card
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{cards: make(map[string]*model.Card)}
}

func (m *memCardRepo) Save(ctx context.Context, tx repository.Tx, card *model.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *card
	m.cards[card.ID] = &cp
	return nil
}

func (m *memCardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCardRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.Number == number {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCardNotFound
}

func (m *memCardRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *memCardRepo) UpdateBalance(ctx context.Context, tx repository.Tx, id string, points int, tierID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Points = points
	c.TierID = tierID
	return nil
}

func (m *memCardRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards), nil
}

type memSessionRepo struct {
	repository.SessionRepository
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *memSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *memSessionRepo) Finish(ctx context.Context, tx repository.Tx, id string, endedAt time.Time, minutes, pointsEarned int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.Status != model.SessionStatusActive {
		return domain.ErrInvalidState
	}
	s.EndedAt = &endedAt
	s.Minutes = minutes
	s.PointsEarned = pointsEarned
	s.Status = model.SessionStatusFinished
	return nil
}

func (m *memSessionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Session
	for _, s := range m.sessions {
		if s.CardID == cardID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTransactionRepo struct {
	repository.TransactionRepository
	mu      sync.Mutex
	entries []*model.Transaction
}

func (m *memTransactionRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memTransactionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Transaction
	for _, t := range m.entries {
		if t.CardID == cardID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTransactionRepo) SumByPeriod(ctx context.Context, tx repository.Tx, typ model.TransactionType, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, t := range m.entries {
		if t.Type == typ {
			sum += int64(t.Delta)
		}
	}
	return sum, nil
}

type memPromotionRepo struct {
	repository.PromotionRepository
	mu     sync.Mutex
	promos []*model.Promotion
}

func (m *memPromotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.promos = append(m.promos, &cp)
	return nil
}

func (m *memPromotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.promos {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPromotionRepo) ListActive(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Promotion
	for _, p := range m.promos {
		if p.AppliesAt(at) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPromotionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Promotion, len(m.promos))
	copy(out, m.promos)
	return out, nil
}

type memPromoCodeRepo struct {
	repository.PromoCodeRepository
	mu    sync.Mutex
	codes map[string]*model.PromoCode
}

func newMemPromoCodeRepo() *memPromoCodeRepo {
	return &memPromoCodeRepo{codes: make(map[string]*model.PromoCode)}
}

func (m *memPromoCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *memPromoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (m *memPromoCodeRepo) Claim(ctx context.Context, tx repository.Tx, id, cardID string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	c.UsedByCardID = &cardID
	c.UsedAt = &usedAt
	return true, nil
}

func (m *memPromoCodeRepo) CountUnused(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.codes {
		if !c.IsUsed {
			n++
		}
	}
	return n, nil
}

type memTierRepo struct {
	repository.TierRepository
	tiers []model.Tier
}

func (m *memTierRepo) ListAll(ctx context.Context, tx repository.Tx) ([]model.Tier, error) {
	return m.tiers, nil
}

type memAuditRepo struct {
	repository.AuditLogRepository
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (m *memAuditRepo) Insert(ctx context.Context, tx repository.Tx, e *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memAuditRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AuditLog, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

type memTxManager struct{ mu sync.Mutex }

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, struct{}{})
}
