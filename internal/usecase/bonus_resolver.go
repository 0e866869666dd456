package usecase

import (
	"context"
	"math"
	"time"

	"club-loyalty/internal/domain/ports/repository"
)

// BonusResolver computes the promotional bonus for an accrual event. It is
// read-only: which promotions apply is decided here, but nothing is written.
type BonusResolver struct {
	promotions repository.PromotionRepository
}

func NewBonusResolver(promotions repository.PromotionRepository) *BonusResolver {
	return &BonusResolver{promotions: promotions}
}

// ResolveBonus sums the contributions of every promotion whose window covers
// occurredAt. Bonuses are additive, never exclusive: percentages apply to
// basePoints, flat bonuses add directly, and the total is floored once at
// the end.
func (r *BonusResolver) ResolveBonus(ctx context.Context, basePoints int, occurredAt time.Time) (int, error) {
	promos, err := r.promotions.ListActive(ctx, repository.NoTX, occurredAt)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, p := range promos {
		if !p.AppliesAt(occurredAt) {
			// ListActive already filters, but cached lists can lag a window edge.
			continue
		}
		total += p.BonusFor(basePoints)
	}
	return int(math.Floor(total)), nil
}
