package repository

import (
	"context"
	"time"

	"club-loyalty/internal/domain/model"
)

// PromoCodeRepository persists single-use codes. Claim is the concurrency
// choke point: a conditional write that flips is_used false -> true, so that
// of N concurrent redeemers exactly one observes claimed == true.
type PromoCodeRepository interface {
	Save(ctx context.Context, tx Tx, c *model.PromoCode) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	// Claim marks the code used by the given card. It returns false when the
	// code was already used, without error.
	Claim(ctx context.Context, tx Tx, id, cardID string, usedAt time.Time) (bool, error)
	// Release undoes a claim; only used when crediting fails after a claim
	// outside a shared transaction.
	Release(ctx context.Context, tx Tx, id string) error
	CountUnused(ctx context.Context, tx Tx) (int, error)
}
