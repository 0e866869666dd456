package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/infra/logging"
	"club-loyalty/internal/infra/metrics"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerResult is what one committed delta did to a card. PreviousTier and
// NewTier let callers detect a tier change; the ledger itself never notifies.
type LedgerResult struct {
	CardID        string
	TransactionID string
	Type          model.TransactionType
	Delta         int
	NewBalance    int
	PreviousTier  model.Tier
	NewTier       model.Tier
}

func (r *LedgerResult) TierChanged() bool {
	return r.PreviousTier.ID != r.NewTier.ID
}

// LedgerUseCase is the single authority for balance mutations. Every change
// to Card.Points and Card.TierID flows through ApplyDelta or ApplyDeltaTx;
// nothing else in the codebase writes those columns.
type LedgerUseCase interface {
	// ApplyDelta runs one delta as its own atomic unit and records it.
	ApplyDelta(ctx context.Context, cardID string, delta int, typ model.TransactionType, description string) (*LedgerResult, error)
	// ApplyDeltaTx runs the delta inside a caller-owned transaction so the
	// caller can commit it together with its own writes (session finish,
	// promo code claim). The caller must invoke RecordApplied after commit.
	ApplyDeltaTx(ctx context.Context, tx repository.Tx, cardID string, delta int, typ model.TransactionType, description string) (*LedgerResult, error)
	// RecordApplied emits the post-commit audit entry and metrics for one
	// committed result. Exactly one call per committed delta.
	RecordApplied(actorUserID *string, res *LedgerResult)
}

type ledgerUC struct {
	cards        repository.CardRepository
	transactions repository.TransactionRepository
	tiers        *model.TierTable
	tm           repository.TransactionManager
	audit        *AuditRecorder
	log          *zerolog.Logger
}

func NewLedgerUseCase(
	cards repository.CardRepository,
	transactions repository.TransactionRepository,
	tiers *model.TierTable,
	tm repository.TransactionManager,
	audit *AuditRecorder,
	logger *zerolog.Logger,
) *ledgerUC {
	return &ledgerUC{
		cards:        cards,
		transactions: transactions,
		tiers:        tiers,
		tm:           tm,
		audit:        audit,
		log:          logger,
	}
}

func (u *ledgerUC) ApplyDelta(ctx context.Context, cardID string, delta int, typ model.TransactionType, description string) (*LedgerResult, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.ApplyDelta")()
	start := time.Now()

	var res *LedgerResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		res, err = u.ApplyDeltaTx(ctx, tx, cardID, delta, typ, description)
		return err
	})
	metrics.ObserveApplyLatency(float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return nil, err
	}

	u.RecordApplied(nil, res)
	return res, nil
}

// ApplyDeltaTx holds the card's row lock from read to write, so concurrent
// deltas against one card serialize and never compute from a stale balance.
func (u *ledgerUC) ApplyDeltaTx(ctx context.Context, tx repository.Tx, cardID string, delta int, typ model.TransactionType, description string) (*LedgerResult, error) {
	if !typ.Valid() {
		return nil, domain.ErrInvalidArgument
	}

	card, err := u.cards.FindByIDForUpdate(ctx, tx, cardID)
	if err != nil {
		u.countRejection(err)
		return nil, err
	}

	newBalance := card.Points + delta
	if newBalance < 0 {
		metrics.IncLedgerRejection("insufficient_balance")
		return nil, fmt.Errorf("%w: balance %d, delta %d", domain.ErrInsufficientBalance, card.Points, delta)
	}

	prevTier, err := u.tiers.Resolve(card.Points)
	if err != nil {
		return nil, err
	}
	newTier, err := u.tiers.Resolve(newBalance)
	if err != nil {
		return nil, err
	}

	if err := u.cards.UpdateBalance(ctx, tx, card.ID, newBalance, newTier.ID); err != nil {
		return nil, wrapPersistence(err)
	}

	txn, err := model.NewTransaction(card.ID, typ, delta, description)
	if err != nil {
		return nil, err
	}
	if err := u.transactions.Insert(ctx, tx, txn); err != nil {
		return nil, wrapPersistence(err)
	}

	return &LedgerResult{
		CardID:        card.ID,
		TransactionID: txn.ID,
		Type:          typ,
		Delta:         delta,
		NewBalance:    newBalance,
		PreviousTier:  prevTier,
		NewTier:       newTier,
	}, nil
}

func (u *ledgerUC) RecordApplied(actorUserID *string, res *LedgerResult) {
	metrics.IncTransaction(string(res.Type), res.Delta)
	if res.TierChanged() {
		metrics.IncTierChange()
		u.log.Info().
			Str("card_id", res.CardID).
			Str("from", res.PreviousTier.Name).
			Str("to", res.NewTier.Name).
			Msg("tier changed")
	}

	entity := "card"
	details := fmt.Sprintf("%s %+d points, balance %d, tier %s", res.Type, res.Delta, res.NewBalance, res.NewTier.Name)
	u.audit.Record(actorUserID, "points."+string(res.Type), details, &entity, &res.CardID)
}

func (u *ledgerUC) countRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		metrics.IncLedgerRejection("busy")
	case errors.Is(err, domain.ErrCardNotFound):
		metrics.IncLedgerRejection("not_found")
	}
}

// wrapPersistence tags storage faults inside an atomic unit. Contention is
// not a persistence fault; it stays ErrBusy for the caller to retry.
func wrapPersistence(err error) error {
	if err == nil || errors.Is(err, domain.ErrBusy) || errors.Is(err, domain.ErrCardNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
