package adapter

import "context"

// TierNotifier announces tier changes to members or staff. The ledger itself
// never notifies; the session and redemption use cases call this after their
// transaction commits, and failures are logged, never propagated.
type TierNotifier interface {
	NotifyTierChange(ctx context.Context, cardNumber, oldTier, newTier string) error
}
