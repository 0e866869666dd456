package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"club-loyalty/internal/domain"
)

// PromoCode is a single-use token redeemable for bonus points, optionally
// tied to a promotion. IsUsed transitions false -> true exactly once; the
// claim itself is a conditional write in the repository.
type PromoCode struct {
	ID           string
	Code         string
	PromotionID  *string
	BonusPoints  int
	IsUsed       bool
	UsedByCardID *string
	UsedAt       *time.Time
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

func NewPromoCode(id, code string, promotionID *string, bonusPoints int, expiresAt *time.Time) (*PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	if bonusPoints < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &PromoCode{
		ID:          id,
		Code:        code,
		PromotionID: promotionID,
		BonusPoints: bonusPoints,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}, nil
}

// Expired reports whether the code's expiry date has passed. Expiry is a
// calendar date: a code expiring today stays valid through the whole day.
func (c *PromoCode) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	ey, em, ed := c.ExpiresAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	expiry := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return expiry.Before(today)
}
