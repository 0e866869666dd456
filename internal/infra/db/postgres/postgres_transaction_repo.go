package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

// transactionRepo appends immutable ledger entries. There is deliberately no
// update or delete statement in this file.
type transactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) repository.TransactionRepository {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) Insert(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (id, card_id, type, delta, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.CardID, string(t.Type), t.Delta, t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Transaction, error) {
	rows, err := querySQL(ctx, r.pool, tx, `
SELECT id, card_id, type, delta, description, created_at
  FROM transactions WHERE card_id=$1 ORDER BY id DESC LIMIT $2;`, cardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.CardID, &typ, &t.Delta, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = model.TransactionType(typ)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// SumByPeriod totals deltas of one type since the start of the current day,
// week or month.
func (r *transactionRepo) SumByPeriod(ctx context.Context, tx repository.Tx, typ model.TransactionType, period string) (int64, error) {
	switch period {
	case "day", "week", "month":
	default:
		return 0, fmt.Errorf("%w: period %q", domain.ErrInvalidArgument, period)
	}
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COALESCE(SUM(delta),0) FROM transactions WHERE type=$1 AND created_at >= date_trunc($2, now());`,
		string(typ), period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

func (r *transactionRepo) CountByCard(ctx context.Context, tx repository.Tx, cardID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM transactions WHERE card_id=$1;`, cardID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
