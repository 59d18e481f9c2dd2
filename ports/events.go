package ports

import (
	"context"
	"time"

	"github.com/layer-3/teller/core"
)

// EventPublisher notifies other components about session lifecycle changes
type EventPublisher interface {
	PublishTransition(ctx context.Context, sessionID string, from, to core.State, at time.Time) error
}
