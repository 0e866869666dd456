package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/infra/metrics"
	"club-loyalty/internal/infra/worker"
)

// AuditRecorder appends audit entries after a business transaction has
// committed. Audit is best-effort observability, not a correctness gate: a
// failed append is logged and counted, never surfaced to the caller whose
// mutation it describes.
type AuditRecorder struct {
	repo repository.AuditLogRepository
	pool *worker.Pool
	log  *zerolog.Logger
}

func NewAuditRecorder(repo repository.AuditLogRepository, pool *worker.Pool, logger *zerolog.Logger) *AuditRecorder {
	auditLog := logger.With().Str("component", "AuditRecorder").Logger()
	return &AuditRecorder{repo: repo, pool: pool, log: &auditLog}
}

// Record enqueues one append. actorUserID is nil for system actions.
func (a *AuditRecorder) Record(actorUserID *string, action, details string, entity, entityID *string) {
	entry := model.NewAuditLog(actorUserID, action, details, entity, entityID)

	err := a.pool.Submit(func(ctx context.Context) error {
		if err := a.repo.Insert(ctx, repository.NoTX, entry); err != nil {
			metrics.IncAuditDropped("write_error")
			a.log.Error().Err(err).Str("action", action).Msg("audit append failed")
			return nil // handled here; the pool must not double-log
		}
		metrics.IncAuditWritten()
		return nil
	})
	if err != nil {
		metrics.IncAuditDropped("queue_full")
		a.log.Warn().Str("action", action).Msg("audit entry dropped, queue full")
	}
}
