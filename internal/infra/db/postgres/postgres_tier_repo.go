package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

var _ repository.TierRepository = (*tierRepo)(nil)

type tierRepo struct {
	pool *pgxpool.Pool
}

func NewTierRepo(pool *pgxpool.Pool) repository.TierRepository {
	return &tierRepo{pool: pool}
}

func (r *tierRepo) Save(ctx context.Context, tx repository.Tx, tier *model.Tier) error {
	if tier.ID == "" {
		tier.ID = uuid.NewString()
	}
	const q = `
INSERT INTO tiers (id, name, min_points, discount_factor)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET name=$2, min_points=$3, discount_factor=$4;
`
	_, err := execSQL(ctx, r.pool, tx, q, tier.ID, tier.Name, tier.MinPoints, tier.DiscountFactor)
	if err != nil {
		return fmt.Errorf("save tier: %w", err)
	}
	return nil
}

func (r *tierRepo) ListAll(ctx context.Context, tx repository.Tx) ([]model.Tier, error) {
	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT id, name, min_points, discount_factor FROM tiers ORDER BY min_points;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Tier
	for rows.Next() {
		var t model.Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.MinPoints, &t.DiscountFactor); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
