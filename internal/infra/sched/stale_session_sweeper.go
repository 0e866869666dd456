package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"club-loyalty/internal/usecase"
)

// StaleSessionSweeper periodically force-closes sessions that outlived the
// configured maximum, covering terminals that crashed or never sent a finish.
type StaleSessionSweeper struct {
	interval   time.Duration
	maxSession time.Duration
	sessionUC  usecase.SessionUseCase
	log        *zerolog.Logger
}

func NewStaleSessionSweeper(interval, maxSession time.Duration, sessionUC usecase.SessionUseCase, logger *zerolog.Logger) *StaleSessionSweeper {
	sweepLog := logger.With().Str("component", "StaleSessionSweeper").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &StaleSessionSweeper{
		interval:   interval,
		maxSession: maxSession,
		sessionUC:  sessionUC,
		log:        &sweepLog,
	}
}

func (w *StaleSessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stale session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stale session sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sessionUC.FinishExpired(ctx, w.maxSession)
			if err != nil {
				w.log.Error().Err(err).Msg("stale session sweep failed")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("stale sessions closed")
			}
		}
	}
}
