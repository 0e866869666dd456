package usecase

import (
	"context"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
)

// Stats is a point-in-time snapshot for the admin panel.
type Stats struct {
	Cards         int
	UnusedCodes   int
	EarnedToday   int64
	EarnedMonth   int64
	BonusMonth    int64
	RedeemedMonth int64
}

type StatsUseCase struct {
	cards        repository.CardRepository
	codes        repository.PromoCodeRepository
	transactions repository.TransactionRepository
}

func NewStatsUseCase(
	cards repository.CardRepository,
	codes repository.PromoCodeRepository,
	transactions repository.TransactionRepository,
) *StatsUseCase {
	return &StatsUseCase{cards: cards, codes: codes, transactions: transactions}
}

func (u *StatsUseCase) Snapshot(ctx context.Context) (*Stats, error) {
	var s Stats
	var err error

	if s.Cards, err = u.cards.Count(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.UnusedCodes, err = u.codes.CountUnused(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.EarnedToday, err = u.transactions.SumByPeriod(ctx, repository.NoTX, model.TransactionEarn, "day"); err != nil {
		return nil, err
	}
	if s.EarnedMonth, err = u.transactions.SumByPeriod(ctx, repository.NoTX, model.TransactionEarn, "month"); err != nil {
		return nil, err
	}
	if s.BonusMonth, err = u.transactions.SumByPeriod(ctx, repository.NoTX, model.TransactionBonus, "month"); err != nil {
		return nil, err
	}
	if s.RedeemedMonth, err = u.transactions.SumByPeriod(ctx, repository.NoTX, model.TransactionRedeem, "month"); err != nil {
		return nil, err
	}
	return &s, nil
}
