//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Transaction manager ---

// mockTx is the opaque handle our mocks hand to repositories.
type mockTx struct{}

// mockTxManager serializes WithTx bodies with a mutex, standing in for the
// row-level serialization the real store provides.
type mockTxManager struct {
	mu         sync.Mutex
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, &mockTx{})
}

// --- Card repository ---

type mockCardRepo struct {
	mu    sync.Mutex
	cards map[string]*model.Card

	FindByIDForUpdateFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Card, error)
	UpdateBalanceFunc     func(ctx context.Context, tx repository.Tx, id string, points int, tierID string) error
}

func newMockCardRepo(cards ...*model.Card) *mockCardRepo {
	m := &mockCardRepo{cards: make(map[string]*model.Card)}
	for _, c := range cards {
		cp := *c
		m.cards[c.ID] = &cp
	}
	return m
}

func (m *mockCardRepo) get(id string) (*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCardRepo) Save(ctx context.Context, tx repository.Tx, card *model.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *card
	m.cards[card.ID] = &cp
	return nil
}

func (m *mockCardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	return m.get(id)
}

func (m *mockCardRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Card, error) {
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

func (m *mockCardRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, tx, id)
	}
	return m.get(id)
}

func (m *mockCardRepo) UpdateBalance(ctx context.Context, tx repository.Tx, id string, points int, tierID string) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, points, tierID)
	}
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

func (m *mockCardRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards), nil
}

func (m *mockCardRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Card
	for _, c := range m.cards {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// --- Transaction repository ---

type mockTransactionRepo struct {
	mu      sync.Mutex
	entries []*model.Transaction

	InsertFunc func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
}

func (m *mockTransactionRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockTransactionRepo) all() []*model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *mockTransactionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, t := range m.all() {
		if t.CardID == cardID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTransactionRepo) SumByPeriod(ctx context.Context, tx repository.Tx, typ model.TransactionType, period string) (int64, error) {
	var sum int64
	for _, t := range m.all() {
		if t.Type == typ {
			sum += int64(t.Delta)
		}
	}
	return sum, nil
}

func (m *mockTransactionRepo) CountByCard(ctx context.Context, tx repository.Tx, cardID string) (int, error) {
	list, _ := m.ListByCard(ctx, tx, cardID, 0)
	return len(list), nil
}

// --- Session repository ---

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session

	FindByIDForUpdateFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Session, error)
	FinishFunc            func(ctx context.Context, tx repository.Tx, id string, endedAt time.Time, minutes, pointsEarned int) error
}

func newMockSessionRepo(sessions ...*model.Session) *mockSessionRepo {
	m := &mockSessionRepo{sessions: make(map[string]*model.Session)}
	for _, s := range sessions {
		cp := *s
		m.sessions[s.ID] = &cp
	}
	return m
}

func (m *mockSessionRepo) get(id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	return m.get(id)
}

func (m *mockSessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	if m.FindByIDForUpdateFunc != nil {
		return m.FindByIDForUpdateFunc(ctx, tx, id)
	}
	return m.get(id)
}

func (m *mockSessionRepo) Finish(ctx context.Context, tx repository.Tx, id string, endedAt time.Time, minutes, pointsEarned int) error {
	if m.FinishFunc != nil {
		return m.FinishFunc(ctx, tx, id, endedAt, minutes, pointsEarned)
	}
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

func (m *mockSessionRepo) ListActiveStartedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Session
	for _, s := range m.sessions {
		if s.Status == model.SessionStatusActive && s.StartedAt.Before(cutoff) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Session, error) {
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

// --- Promotion repository ---

type mockPromotionRepo struct {
	mu     sync.Mutex
	promos []*model.Promotion

	ListActiveFunc func(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error)
}

func (m *mockPromotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.promos = append(m.promos, &cp)
	return nil
}

func (m *mockPromotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
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

func (m *mockPromotionRepo) ListActive(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, tx, at)
	}
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

func (m *mockPromotionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Promotion, len(m.promos))
	copy(out, m.promos)
	return out, nil
}

// --- Promo code repository ---

type mockPromoCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.PromoCode // by id

	ClaimFunc func(ctx context.Context, tx repository.Tx, id, cardID string, usedAt time.Time) (bool, error)
}

func newMockPromoCodeRepo(codes ...*model.PromoCode) *mockPromoCodeRepo {
	m := &mockPromoCodeRepo{codes: make(map[string]*model.PromoCode)}
	for _, c := range codes {
		cp := *c
		m.codes[c.ID] = &cp
	}
	return m
}

func (m *mockPromoCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.PromoCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *mockPromoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
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

func (m *mockPromoCodeRepo) Claim(ctx context.Context, tx repository.Tx, id, cardID string, usedAt time.Time) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, tx, id, cardID, usedAt)
	}
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

func (m *mockPromoCodeRepo) Release(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[id]; ok {
		c.IsUsed = false
		c.UsedByCardID = nil
		c.UsedAt = nil
	}
	return nil
}

func (m *mockPromoCodeRepo) CountUnused(ctx context.Context, tx repository.Tx) (int, error) {
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

// --- Audit log repository ---

type mockAuditLogRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog

	InsertFunc func(ctx context.Context, tx repository.Tx, e *model.AuditLog) error
}

func (m *mockAuditLogRepo) Insert(ctx context.Context, tx repository.Tx, e *model.AuditLog) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockAuditLogRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *mockAuditLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AuditLog, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// --- Notifier ---

type mockNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockNotifier) NotifyTierChange(ctx context.Context, cardNumber, oldTier, newTier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cardNumber+": "+oldTier+" -> "+newTier)
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
