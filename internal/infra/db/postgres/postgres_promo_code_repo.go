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

var _ repository.PromoCodeRepository = (*promoCodeRepo)(nil)

type promoCodeRepo struct {
	pool *pgxpool.Pool
}

func NewPromoCodeRepo(pool *pgxpool.Pool) repository.PromoCodeRepository {
	return &promoCodeRepo{pool: pool}
}

const promoCodeColumns = `id, code, promotion_id, bonus_points, is_used, used_by_card_id, used_at, expires_at, created_at`

func (r *promoCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.PromoCode) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const q = `
INSERT INTO promo_codes (id, code, promotion_id, bonus_points, is_used, used_by_card_id, used_at, expires_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  is_used=$5, used_by_card_id=$6, used_at=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.PromotionID, c.BonusPoints, c.IsUsed, c.UsedByCardID, c.UsedAt, c.ExpiresAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("save promo code: %w", err)
	}
	return nil
}

func (r *promoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+promoCodeColumns+` FROM promo_codes WHERE code=$1;`, code)
	if err != nil {
		return nil, err
	}
	var c model.PromoCode
	err = row.Scan(&c.ID, &c.Code, &c.PromotionID, &c.BonusPoints, &c.IsUsed, &c.UsedByCardID, &c.UsedAt, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Claim flips is_used false -> true as one conditional write. Under
// concurrent redemption of the same code, Postgres serializes the updates on
// the row lock and every caller after the first sees zero rows affected.
func (r *promoCodeRepo) Claim(ctx context.Context, tx repository.Tx, id, cardID string, usedAt time.Time) (bool, error) {
	const q = `
UPDATE promo_codes SET is_used=TRUE, used_by_card_id=$2, used_at=$3
 WHERE id=$1 AND is_used=FALSE;
`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, cardID, usedAt)
	if err != nil {
		return false, fmt.Errorf("claim promo code: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *promoCodeRepo) Release(ctx context.Context, tx repository.Tx, id string) error {
	const q = `
UPDATE promo_codes SET is_used=FALSE, used_by_card_id=NULL, used_at=NULL
 WHERE id=$1 AND is_used=TRUE;
`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("release promo code: %w", err)
	}
	return nil
}

func (r *promoCodeRepo) CountUnused(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM promo_codes WHERE is_used=FALSE;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count promo codes: %w", err)
	}
	return n, nil
}
