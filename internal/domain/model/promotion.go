package model

import (
	"time"

	"github.com/google/uuid"

	"club-loyalty/internal/domain"
)

// Promotion is a time-windowed bonus rule. Both bounds of the window are
// optional; a nil bound is open-ended on that side.
type Promotion struct {
	ID           string
	Name         string
	IsActive     bool
	StartsAt     *time.Time
	EndsAt       *time.Time
	BonusPercent float64
	BonusPoints  int
	CreatedAt    time.Time
}

func NewPromotion(id, name string, bonusPercent float64, bonusPoints int, startsAt, endsAt *time.Time) (*Promotion, error) {
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if bonusPercent < 0 || bonusPoints < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return nil, domain.ErrInvalidTimeRange
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Promotion{
		ID:           id,
		Name:         name,
		IsActive:     true,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		BonusPercent: bonusPercent,
		BonusPoints:  bonusPoints,
		CreatedAt:    time.Now(),
	}, nil
}

// AppliesAt reports whether the promotion covers the given instant.
func (p *Promotion) AppliesAt(at time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartsAt != nil && at.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && at.After(*p.EndsAt) {
		return false
	}
	return true
}

// BonusFor computes this promotion's contribution for a base accrual.
// The percentage part is kept fractional; the caller floors the total sum.
func (p *Promotion) BonusFor(basePoints int) float64 {
	return float64(basePoints)*p.BonusPercent/100 + float64(p.BonusPoints)
}
