package providers

import (
	"context"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to claim events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ClaimEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ClaimEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelClaimUpdates is the channel carrying every claim event
const EventChannelClaimUpdates = "claims:updates"
