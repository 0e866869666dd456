package repository

import (
	"context"
	"time"

	"club-loyalty/internal/domain/model"
)

type PromotionRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Promotion) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Promotion, error)
	// ListActive returns promotions whose window covers the given instant.
	ListActive(ctx context.Context, tx Tx, at time.Time) ([]*model.Promotion, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Promotion, error)
}
