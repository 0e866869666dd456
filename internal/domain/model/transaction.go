package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"club-loyalty/internal/domain"
)

type TransactionType string

const (
	TransactionEarn   TransactionType = "earn"
	TransactionBonus  TransactionType = "bonus"
	TransactionRedeem TransactionType = "redeem"
	TransactionAdjust TransactionType = "adjust"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarn, TransactionBonus, TransactionRedeem, TransactionAdjust:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry: exactly one per balance
// mutation, append-only. IDs are ULIDs so entries sort by creation time.
type Transaction struct {
	ID          string
	CardID      string
	Type        TransactionType
	Delta       int
	Description string
	CreatedAt   time.Time
}

func NewTransaction(cardID string, typ TransactionType, delta int, description string) (*Transaction, error) {
	if cardID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !typ.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:          id.String(),
		CardID:      cardID,
		Type:        typ,
		Delta:       delta,
		Description: description,
		CreatedAt:   now,
	}, nil
}
