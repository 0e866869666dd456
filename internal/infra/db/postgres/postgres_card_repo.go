package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CardRepository = (*cardRepo)(nil)

type cardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) repository.CardRepository {
	return &cardRepo{pool: pool}
}

func (r *cardRepo) Save(ctx context.Context, tx repository.Tx, card *model.Card) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	const q = `
INSERT INTO cards (id, number, user_id, points, tier_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  number=$2, user_id=$3, updated_at=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		card.ID, card.Number, card.UserID, card.Points, card.TierID, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

const cardColumns = `id, number, user_id, points, tier_id, created_at, updated_at`

func scanCard(row pgx.Row) (*model.Card, error) {
	var c model.Card
	err := row.Scan(&c.ID, &c.Number, &c.UserID, &c.Points, &c.TierID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, translateLockErr(err)
	}
	return &c, nil
}

func (r *cardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+cardColumns+` FROM cards WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanCard(row)
}

func (r *cardRepo) FindByNumber(ctx context.Context, tx repository.Tx, number string) (*model.Card, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+cardColumns+` FROM cards WHERE number=$1;`, number)
	if err != nil {
		return nil, err
	}
	return scanCard(row)
}

// FindByIDForUpdate serializes concurrent deltas on one card. NOWAIT keeps
// the wait bounded: a held lock surfaces as domain.ErrBusy immediately.
func (r *cardRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Card, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+cardColumns+` FROM cards WHERE id=$1 FOR UPDATE NOWAIT;`, id)
	if err != nil {
		return nil, err
	}
	return scanCard(row)
}

func (r *cardRepo) UpdateBalance(ctx context.Context, tx repository.Tx, id string, points int, tierID string) error {
	const q = `UPDATE cards SET points=$2, tier_id=$3, updated_at=now() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, points, tierID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *cardRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM cards;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (r *cardRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Card, error) {
	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT `+cardColumns+` FROM cards ORDER BY created_at DESC OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.Number, &c.UserID, &c.Points, &c.TierID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
