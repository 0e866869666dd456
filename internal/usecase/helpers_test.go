//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"club-loyalty/internal/domain/model"
	"club-loyalty/internal/infra/worker"
	"club-loyalty/internal/usecase"
)

const testWait = 2 * time.Second

func testTierTable(t *testing.T) *model.TierTable {
	t.Helper()
	tt, err := model.NewTierTable([]model.Tier{
		{ID: "bronze", Name: "Bronze", MinPoints: 0, DiscountFactor: 0},
		{ID: "silver", Name: "Silver", MinPoints: 100, DiscountFactor: 0.05},
		{ID: "gold", Name: "Gold", MinPoints: 500, DiscountFactor: 0.10},
	})
	if err != nil {
		t.Fatalf("tier table: %v", err)
	}
	return tt
}

func newTestAudit(t *testing.T) (*usecase.AuditRecorder, *mockAuditLogRepo) {
	t.Helper()
	repo := &mockAuditLogRepo{}
	pool := worker.NewPool(1, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		pool.Stop()
		cancel()
	})
	return usecase.NewAuditRecorder(repo, pool, newTestLogger()), repo
}

func testCard(t *testing.T, id string, points int, tierID string) *model.Card {
	t.Helper()
	card, err := model.NewCard(id, "CARD-"+id, "user-"+id, tierID)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	card.Points = points
	return card
}

// waitFor polls until cond holds or the deadline passes. Used for the
// async audit path.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func strPtr(s string) *string { return &s }

func timePtr(ts time.Time) *time.Time { return &ts }
