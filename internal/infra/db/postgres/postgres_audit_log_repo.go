package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

type auditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) repository.AuditLogRepository {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) Insert(ctx context.Context, tx repository.Tx, e *model.AuditLog) error {
	const q = `
INSERT INTO audit_log (id, actor_user_id, action, details, entity, entity_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.ActorUserID, e.Action, e.Details, e.Entity, e.EntityID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *auditLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.AuditLog, error) {
	rows, err := querySQL(ctx, r.pool, tx, `
SELECT id, actor_user_id, action, details, entity, entity_id, created_at
  FROM audit_log ORDER BY created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AuditLog
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.Details, &e.Entity, &e.EntityID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
