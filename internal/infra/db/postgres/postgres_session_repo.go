package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) repository.SessionRepository {
	return &sessionRepo{pool: pool}
}

const sessionColumns = `id, card_id, computer_number, started_at, ended_at, minutes, points_earned, status`

func (r *sessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Session) error {
	const q = `
INSERT INTO sessions (id, card_id, computer_number, started_at, ended_at, minutes, points_earned, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  ended_at=$5, minutes=$6, points_earned=$7, status=$8;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.CardID, s.ComputerNumber, s.StartedAt, s.EndedAt, s.Minutes, s.PointsEarned, string(s.Status))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var status string
	err := row.Scan(&s.ID, &s.CardID, &s.ComputerNumber, &s.StartedAt, &s.EndedAt, &s.Minutes, &s.PointsEarned, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, translateLockErr(err)
	}
	s.Status = model.SessionStatus(status)
	return &s, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+sessionColumns+` FROM sessions WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanSession(row)
}

func (r *sessionRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+sessionColumns+` FROM sessions WHERE id=$1 FOR UPDATE NOWAIT;`, id)
	if err != nil {
		return nil, err
	}
	return scanSession(row)
}

// Finish writes the terminal state. The status predicate is a second guard
// behind the row lock: a session never leaves the finished state.
func (r *sessionRepo) Finish(ctx context.Context, tx repository.Tx, id string, endedAt time.Time, minutes, pointsEarned int) error {
	const q = `
UPDATE sessions SET ended_at=$2, minutes=$3, points_earned=$4, status='finished'
 WHERE id=$1 AND status='active';
`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, endedAt, minutes, pointsEarned)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (r *sessionRepo) ListActiveStartedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Session, error) {
	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT `+sessionColumns+` FROM sessions WHERE status='active' AND started_at < $1 ORDER BY started_at LIMIT $2;`,
		cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepo) ListByCard(ctx context.Context, tx repository.Tx, cardID string, limit int) ([]*model.Session, error) {
	rows, err := querySQL(ctx, r.pool, tx,
		`SELECT `+sessionColumns+` FROM sessions WHERE card_id=$1 ORDER BY started_at DESC LIMIT $2;`,
		cardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*model.Session, error) {
	var out []*model.Session
	for rows.Next() {
		var s model.Session
		var status string
		if err := rows.Scan(&s.ID, &s.CardID, &s.ComputerNumber, &s.StartedAt, &s.EndedAt, &s.Minutes, &s.PointsEarned, &status); err != nil {
			return nil, err
		}
		s.Status = model.SessionStatus(status)
		out = append(out, &s)
	}
	return out, rows.Err()
}
