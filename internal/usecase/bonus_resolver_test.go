//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/domain/ports/repository"
	"club-loyalty/internal/usecase"
)

func savePromo(t *testing.T, repo *mockPromotionRepo, name string, percent float64, flat int, startsAt, endsAt *time.Time) *model.Promotion {
	t.Helper()
	p, err := model.NewPromotion("", name, percent, flat, startsAt, endsAt)
	if err != nil {
		t.Fatalf("promotion %s: %v", name, err)
	}
	if err := repo.Save(context.Background(), repository.NoTX, p); err != nil {
		t.Fatalf("save promotion %s: %v", name, err)
	}
	return p
}

func TestResolveBonus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	t.Run("no promotions means no bonus", func(t *testing.T) {
		r := usecase.NewBonusResolver(&mockPromotionRepo{})
		bonus, err := r.ResolveBonus(ctx, 100, at)
		if err != nil || bonus != 0 {
			t.Fatalf("bonus = %d err = %v, want 0 nil", bonus, err)
		}
	})

	t.Run("percent and flat bonuses stack", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		savePromo(t, repo, "ten percent", 10, 0, nil, nil)
		savePromo(t, repo, "flat five", 0, 5, nil, nil)

		r := usecase.NewBonusResolver(repo)
		bonus, err := r.ResolveBonus(ctx, 120, at)
		if err != nil {
			t.Fatalf("ResolveBonus: %v", err)
		}
		if bonus != 17 {
			t.Errorf("bonus = %d, want 17", bonus)
		}
	})

	t.Run("fractional contributions floor once at the end", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		// 5% of 50 is 2.5 each; summed first, floored to 5, not 2+2.
		savePromo(t, repo, "a", 5, 0, nil, nil)
		savePromo(t, repo, "b", 5, 0, nil, nil)

		r := usecase.NewBonusResolver(repo)
		bonus, err := r.ResolveBonus(ctx, 50, at)
		if err != nil {
			t.Fatalf("ResolveBonus: %v", err)
		}
		if bonus != 5 {
			t.Errorf("bonus = %d, want 5", bonus)
		}
	})

	t.Run("window edges are inclusive", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		savePromo(t, repo, "exact window", 10, 0, timePtr(at), timePtr(at))

		r := usecase.NewBonusResolver(repo)
		bonus, err := r.ResolveBonus(ctx, 100, at)
		if err != nil || bonus != 10 {
			t.Fatalf("bonus = %d err = %v, want 10 nil", bonus, err)
		}
	})

	t.Run("out-of-window and disabled promotions are skipped", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		savePromo(t, repo, "ended", 10, 0, nil, timePtr(at.Add(-time.Hour)))
		savePromo(t, repo, "not yet", 10, 0, timePtr(at.Add(time.Hour)), nil)
		disabled := savePromo(t, repo, "disabled", 10, 0, nil, nil)
		disabled.IsActive = false
		repo.promos[len(repo.promos)-1] = disabled

		r := usecase.NewBonusResolver(repo)
		bonus, err := r.ResolveBonus(ctx, 100, at)
		if err != nil || bonus != 0 {
			t.Fatalf("bonus = %d err = %v, want 0 nil", bonus, err)
		}
	})

	t.Run("stale cached entries are re-checked", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		ended, err := model.NewPromotion("", "stale", 10, 0, nil, timePtr(at.Add(-time.Hour)))
		if err != nil {
			t.Fatalf("promotion: %v", err)
		}
		repo.ListActiveFunc = func(ctx context.Context, tx repository.Tx, ts time.Time) ([]*model.Promotion, error) {
			return []*model.Promotion{ended}, nil
		}

		r := usecase.NewBonusResolver(repo)
		bonus, err := r.ResolveBonus(ctx, 100, at)
		if err != nil || bonus != 0 {
			t.Fatalf("bonus = %d err = %v, want 0 nil", bonus, err)
		}
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		repo := &mockPromotionRepo{}
		boom := errors.New("redis down")
		repo.ListActiveFunc = func(ctx context.Context, tx repository.Tx, ts time.Time) ([]*model.Promotion, error) {
			return nil, boom
		}

		r := usecase.NewBonusResolver(repo)
		if _, err := r.ResolveBonus(ctx, 100, at); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	})
}
