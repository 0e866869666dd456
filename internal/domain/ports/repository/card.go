package repository

import (
	"context"

	"club-loyalty/internal/domain/model"
)

// CardRepository persists loyalty cards. UpdateBalance is the only write
// path for points and tier, and FindByIDForUpdate must be used before it so
// concurrent deltas against one card serialize on the row lock.
type CardRepository interface {
	Save(ctx context.Context, tx Tx, card *model.Card) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Card, error)
	FindByNumber(ctx context.Context, tx Tx, number string) (*model.Card, error)
	// FindByIDForUpdate locks the card row without waiting; contention
	// surfaces as domain.ErrBusy.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Card, error)
	UpdateBalance(ctx context.Context, tx Tx, id string, points int, tierID string) error
	Count(ctx context.Context, tx Tx) (int, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Card, error)
}
