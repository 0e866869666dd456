package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

var _ repository.PromotionRepository = (*promotionRepo)(nil)

type promotionRepo struct {
	pool *pgxpool.Pool
}

func NewPromotionRepo(pool *pgxpool.Pool) repository.PromotionRepository {
	return &promotionRepo{pool: pool}
}

const promotionColumns = `id, name, is_active, starts_at, ends_at, bonus_percent, bonus_points, created_at`

func (r *promotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.Promotion) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `
INSERT INTO promotions (id, name, is_active, starts_at, ends_at, bonus_percent, bonus_points, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  name=$2, is_active=$3, starts_at=$4, ends_at=$5, bonus_percent=$6, bonus_points=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.IsActive, p.StartsAt, p.EndsAt, p.BonusPercent, p.BonusPoints, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save promotion: %w", err)
	}
	return nil
}

func (r *promotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promotion, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+promotionColumns+` FROM promotions WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	var p model.Promotion
	err = row.Scan(&p.ID, &p.Name, &p.IsActive, &p.StartsAt, &p.EndsAt, &p.BonusPercent, &p.BonusPoints, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *promotionRepo) ListActive(ctx context.Context, tx repository.Tx, at time.Time) ([]*model.Promotion, error) {
	rows, err := querySQL(ctx, r.pool, tx, `
SELECT `+promotionColumns+`
  FROM promotions
 WHERE is_active
   AND (starts_at IS NULL OR starts_at <= $1)
   AND (ends_at IS NULL OR ends_at >= $1)
 ORDER BY created_at;`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func (r *promotionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Promotion, error) {
	rows, err := querySQL(ctx, r.pool, tx, `SELECT `+promotionColumns+` FROM promotions ORDER BY created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func collectPromotions(rows pgx.Rows) ([]*model.Promotion, error) {
	var out []*model.Promotion
	for rows.Next() {
		var p model.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &p.StartsAt, &p.EndsAt, &p.BonusPercent, &p.BonusPoints, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
