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
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase claims a promo code exactly once and credits its bonus.
// The conditional claim and the ledger credit share one database
// transaction: a code is never left used without its bonus credited.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, code, cardID string) (int, error)
}

type redemptionUC struct {
	codes        repository.PromoCodeRepository
	promotions   repository.PromotionRepository
	cards        repository.CardRepository
	ledger       LedgerUseCase
	tm           repository.TransactionManager
	notifier     adapter.TierNotifier
	defaultBonus int
	log          *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.PromoCodeRepository,
	promotions repository.PromotionRepository,
	cards repository.CardRepository,
	ledger LedgerUseCase,
	tm repository.TransactionManager,
	notifier adapter.TierNotifier,
	defaultBonus int,
	logger *zerolog.Logger,
) *redemptionUC {
	return &redemptionUC{
		codes:        codes,
		promotions:   promotions,
		cards:        cards,
		ledger:       ledger,
		tm:           tm,
		notifier:     notifier,
		defaultBonus: defaultBonus,
		log:          logger,
	}
}

func (u *redemptionUC) Redeem(ctx context.Context, code, cardID string) (int, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()

	var res *LedgerResult
	var bonus int
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		pc, err := u.codes.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		now := time.Now()
		// Expiry wins over the used flag: an expired code reports expired
		// no matter who touched it before.
		if pc.Expired(now) {
			return domain.ErrCodeExpired
		}
		if pc.IsUsed {
			return domain.ErrCodeAlreadyUsed
		}

		claimed, err := u.codes.Claim(ctx, tx, pc.ID, cardID, now)
		if err != nil {
			return err
		}
		if !claimed {
			// Someone else won the conditional write between our read and
			// this update.
			return domain.ErrCodeAlreadyUsed
		}

		bonus, err = u.resolveBonus(ctx, tx, pc)
		if err != nil {
			return err
		}

		res, err = u.ledger.ApplyDeltaTx(ctx, tx, cardID, bonus, model.TransactionBonus, "promo:"+pc.Code)
		return err
	})
	if err != nil {
		metrics.IncRedemption(redemptionOutcome(err))
		return 0, err
	}

	metrics.IncRedemption("ok")
	u.ledger.RecordApplied(nil, res)
	u.notifyTierChange(ctx, res)
	return bonus, nil
}

// resolveBonus prefers the code's own flat amount, then its promotion's flat
// points, then the configured default for plain unlinked codes.
func (u *redemptionUC) resolveBonus(ctx context.Context, tx repository.Tx, pc *model.PromoCode) (int, error) {
	if pc.BonusPoints > 0 {
		return pc.BonusPoints, nil
	}
	if pc.PromotionID != nil {
		promo, err := u.promotions.FindByID(ctx, tx, *pc.PromotionID)
		if err != nil {
			return 0, fmt.Errorf("promo code %s: %w", pc.Code, err)
		}
		if promo.BonusPoints > 0 {
			return promo.BonusPoints, nil
		}
	}
	return u.defaultBonus, nil
}

func redemptionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "already_used"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	default:
		return "error"
	}
}

func (u *redemptionUC) notifyTierChange(ctx context.Context, res *LedgerResult) {
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
