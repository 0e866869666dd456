package model

import (
	"fmt"
	"sort"

	"club-loyalty/internal/domain"
)

// Tier is a loyalty level unlocked at a points threshold. Tiers are immutable
// reference data loaded once at startup.
type Tier struct {
	ID             string
	Name           string
	MinPoints      int
	DiscountFactor float64
}

// TierTable resolves a points balance to a tier. It is pure: construction
// validates the threshold table once, after which Resolve never touches
// storage and never fails for a non-negative balance.
type TierTable struct {
	tiers []Tier // sorted ascending by MinPoints
}

// NewTierTable validates and orders the configured tiers. The table must be
// non-empty, contain a tier with MinPoints == 0, and have strictly increasing
// thresholds; anything else is a configuration fault.
func NewTierTable(tiers []Tier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers configured", domain.ErrTierTableInvalid)
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })

	if sorted[0].MinPoints != 0 {
		return nil, fmt.Errorf("%w: lowest tier %q starts at %d points, want 0",
			domain.ErrTierTableInvalid, sorted[0].Name, sorted[0].MinPoints)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinPoints == sorted[i-1].MinPoints {
			return nil, fmt.Errorf("%w: tiers %q and %q share threshold %d",
				domain.ErrTierTableInvalid, sorted[i-1].Name, sorted[i].Name, sorted[i].MinPoints)
		}
	}
	return &TierTable{tiers: sorted}, nil
}

// Resolve returns the tier with the greatest MinPoints <= points.
func (t *TierTable) Resolve(points int) (Tier, error) {
	if points < 0 {
		return Tier{}, fmt.Errorf("%w: negative points %d", domain.ErrInvalidArgument, points)
	}
	// First tier with MinPoints > points; the answer is the one before it.
	i := sort.Search(len(t.tiers), func(i int) bool { return t.tiers[i].MinPoints > points })
	return t.tiers[i-1], nil
}

// Tiers returns the ordered tier list, lowest threshold first.
func (t *TierTable) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
