package repository

import (
	"context"

	"club-loyalty/internal/domain/model"
)

// TransactionRepository appends immutable ledger entries. There is no update
// or delete: a committed transaction row never changes.
type TransactionRepository interface {
	Insert(ctx context.Context, tx Tx, t *model.Transaction) error
	ListByCard(ctx context.Context, tx Tx, cardID string, limit int) ([]*model.Transaction, error)
	// SumByPeriod totals deltas of one type over "day", "week" or "month".
	SumByPeriod(ctx context.Context, tx Tx, typ model.TransactionType, period string) (int64, error)
	CountByCard(ctx context.Context, tx Tx, cardID string) (int, error)
}
