package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"club-loyalty/internal/domain"
	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/adapter"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/infra/logging"
	"club-loyalty/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase owns the session lifecycle. Finishing a session persists
// its terminal state and credits its points as one atomic unit; a session
// marked finished without its points, or points without the finish, cannot
// happen.
type SessionUseCase interface {
	Start(ctx context.Context, cardID string, computerNumber int) (*model.Session, error)
	Finish(ctx context.Context, sessionID string, endedAt time.Time) (*model.Session, *LedgerResult, error)
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	// FinishExpired force-closes sessions running past maxDuration,
	// crediting at most maxDuration worth of points each. Returns how many
	// sessions it closed.
	FinishExpired(ctx context.Context, maxDuration time.Duration) (int, error)
}

type sessionUC struct {
	sessions        repository.SessionRepository
	cards           repository.CardRepository
	ledger          LedgerUseCase
	bonuses         *BonusResolver
	tm              repository.TransactionManager
	audit           *AuditRecorder
	notifier        adapter.TierNotifier
	pointsPerMinute float64
	log             *zerolog.Logger
}

func NewSessionUseCase(
	sessions repository.SessionRepository,
	cards repository.CardRepository,
	ledger LedgerUseCase,
	bonuses *BonusResolver,
	tm repository.TransactionManager,
	audit *AuditRecorder,
	notifier adapter.TierNotifier,
	pointsPerMinute float64,
	logger *zerolog.Logger,
) *sessionUC {
	return &sessionUC{
		sessions:        sessions,
		cards:           cards,
		ledger:          ledger,
		bonuses:         bonuses,
		tm:              tm,
		audit:           audit,
		notifier:        notifier,
		pointsPerMinute: pointsPerMinute,
		log:             logger,
	}
}

func (u *sessionUC) Start(ctx context.Context, cardID string, computerNumber int) (*model.Session, error) {
	defer logging.TraceDuration(u.log, "SessionUC.Start")()

	if _, err := u.cards.FindByID(ctx, repository.NoTX, cardID); err != nil {
		return nil, err
	}
	sess, err := model.NewSession("", cardID, computerNumber, time.Now())
	if err != nil {
		return nil, err
	}
	if err := u.sessions.Save(ctx, repository.NoTX, sess); err != nil {
		return nil, err
	}

	metrics.IncSessionStarted()
	entity := "session"
	u.audit.Record(nil, "session.start",
		fmt.Sprintf("card %s at computer %d", cardID, computerNumber), &entity, &sess.ID)
	return sess, nil
}

// Finish closes the session and credits base + promotional points through
// the ledger. The session update and the ledger mutation share one database
// transaction.
func (u *sessionUC) Finish(ctx context.Context, sessionID string, endedAt time.Time) (*model.Session, *LedgerResult, error) {
	defer logging.TraceDuration(u.log, "SessionUC.Finish")()
	return u.finish(ctx, sessionID, endedAt, "terminal")
}

func (u *sessionUC) finish(ctx context.Context, sessionID string, endedAt time.Time, trigger string) (*model.Session, *LedgerResult, error) {
	var (
		sess *model.Session
		res  *LedgerResult
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		sess, err = u.sessions.FindByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status == model.SessionStatusFinished {
			return domain.ErrInvalidState
		}

		minutes, err := sess.DurationMinutes(endedAt)
		if err != nil {
			return err
		}
		base := int(float64(minutes) * u.pointsPerMinute)
		bonus, err := u.bonuses.ResolveBonus(ctx, base, endedAt)
		if err != nil {
			return err
		}
		earned := base + bonus

		desc := fmt.Sprintf("session %s: %d min at computer %d", sess.ID, minutes, sess.ComputerNumber)
		res, err = u.ledger.ApplyDeltaTx(ctx, tx, sess.CardID, earned, model.TransactionEarn, desc)
		if err != nil {
			return err
		}

		if err := sess.Finish(endedAt, earned); err != nil {
			return err
		}
		return u.sessions.Finish(ctx, tx, sess.ID, endedAt, minutes, earned)
	})
	if err != nil {
		return nil, nil, err
	}

	u.ledger.RecordApplied(nil, res)
	metrics.IncSessionFinished(trigger, sess.Minutes)
	u.notifyTierChange(ctx, res)
	return sess, res, nil
}

func (u *sessionUC) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return u.sessions.FindByID(ctx, repository.NoTX, sessionID)
}

func (u *sessionUC) FinishExpired(ctx context.Context, maxDuration time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxDuration)
	stale, err := u.sessions.ListActiveStartedBefore(ctx, repository.NoTX, cutoff, 100)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, s := range stale {
		// Credit only the allowed window, not however long the session
		// was left open.
		endedAt := s.StartedAt.Add(maxDuration)
		_, _, err := u.finish(ctx, s.ID, endedAt, "sweeper")
		switch {
		case err == nil:
			closed++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrBusy):
			// A terminal beat us to it or holds the row; next tick will skip it.
			continue
		default:
			u.log.Error().Err(err).Str("session_id", s.ID).Msg("stale session close failed")
		}
	}
	return closed, nil
}

func (u *sessionUC) notifyTierChange(ctx context.Context, res *LedgerResult) {
	if u.notifier == nil || !res.TierChanged() {
		return
	}
	card, err := u.cards.FindByID(ctx, repository.NoTX, res.CardID)
	if err != nil {
		u.log.Warn().Err(err).Str("card_id", res.CardID).Msg("tier notice skipped")
		return
	}
	if err := u.notifier.NotifyTierChange(ctx, card.Number, res.PreviousTier.Name, res.NewTier.Name); err != nil {
		u.log.Warn().Err(err).Str("card_id", res.CardID).Msg("tier notice failed")
	}
}
