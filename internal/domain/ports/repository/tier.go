package repository

import (
	"context"

	"club-loyalty/internal/domain/model"
)

// TierRepository reads the tier reference table, ordered by threshold.
type TierRepository interface {
	Save(ctx context.Context, tx Tx, tier *model.Tier) error
	ListAll(ctx context.Context, tx Tx) ([]model.Tier, error)
}
