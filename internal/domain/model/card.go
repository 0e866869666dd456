package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"club-loyalty/internal/domain"
)

// Card is a member's loyalty account. Points and TierID are written only by
// the ledger use case; every other component treats them as read-only.
type Card struct {
	ID        string
	Number    string
	UserID    string
	Points    int
	TierID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCard(id, number, userID, tierID string) (*Card, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, domain.ErrInvalidArgument
	}
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	return &Card{
		ID:        id,
		Number:    number,
		UserID:    userID,
		Points:    0,
		TierID:    tierID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
