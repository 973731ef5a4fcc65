package providers

import (
	"context"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to item events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ItemEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ItemEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelItemUpdates carries every item event
	EventChannelItemUpdates = "items:updates"

	// EventChannelStorePrefix is the prefix for store-specific channels
	EventChannelStorePrefix = "store:"
)

// GetStoreChannel returns the channel name for a specific store
func GetStoreChannel(storeID string) string {
	return EventChannelStorePrefix + storeID
}
