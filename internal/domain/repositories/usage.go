package repositories

import (
	"context"
	"time"
)

// UsageStore is the shared consumption counter keyed by caller identity and
// period day. Implementations must make Increment and Decrement atomic across
// processes; the service layer reserves with Increment and hands back
// over-limit or abandoned reservations with Decrement.
type UsageStore interface {
	Get(ctx context.Context, identity string, day time.Time) (int64, error)
	Increment(ctx context.Context, identity string, day time.Time) (int64, error)
	Decrement(ctx context.Context, identity string, day time.Time) error
}
