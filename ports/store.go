package ports

import (
	"context"
	"time"
)

// AttemptStore counts failed PIN attempts per card
type AttemptStore interface {
	// RecordFailure increments the counter for card, keeping it alive for ttl,
	// and returns the new count
	RecordFailure(ctx context.Context, card string, ttl time.Duration) (int, error)
	Failures(ctx context.Context, card string) (int, error)
	Clear(ctx context.Context, card string) error
}
