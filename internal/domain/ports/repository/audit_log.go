package repository

import (
	"context"

	"club-loyalty/internal/domain/model"
)

// AuditLogRepository appends audit records. Append-only by contract: the
// core never updates or deletes an entry.
type AuditLogRepository interface {
	Insert(ctx context.Context, tx Tx, e *model.AuditLog) error
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.AuditLog, error)
}
