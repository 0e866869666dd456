package repository

import (
	"context"
	"time"

	"club-loyalty/internal/domain/model"
)

type SessionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Session) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Session, error)
	// FindByIDForUpdate locks the session row without waiting; contention
	// surfaces as domain.ErrBusy.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Session, error)
	// Finish writes the terminal state of one session.
	Finish(ctx context.Context, tx Tx, id string, endedAt time.Time, minutes, pointsEarned int) error
	ListActiveStartedBefore(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Session, error)
	ListByCard(ctx context.Context, tx Tx, cardID string, limit int) ([]*model.Session, error)
}
