package usecase

import (
	"context"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// LoadTierTable reads the tier reference data and validates it into the
// resolver the ledger uses. A malformed table fails here, at startup, before
// any balance can be touched.
func LoadTierTable(ctx context.Context, tiers repository.TierRepository) (*model.TierTable, error) {
	list, err := tiers.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return model.NewTierTable(list)
}
