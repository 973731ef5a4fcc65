package events

import (
	"context"
	"sync"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

// MemoryEventBus delivers item events within one process. Used when Redis is not configured.
type MemoryEventBus struct {
	hub    *hub
	once   sync.Once
	closed chan struct{}
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{hub: newHub(), closed: make(chan struct{})}
}

// Publish delivers the event to current subscribers of channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.ItemEvent) error {
	select {
	case <-b.closed:
		return nil
	default:
	}
	b.hub.broadcast(channel, event)
	return nil
}

// Subscribe subscribes to events on a channel until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ItemEvent, error) {
	ch, _ := b.hub.add(channel)
	go func() {
		select {
		case <-ctx.Done():
			b.hub.remove(channel, ch)
		case <-b.closed:
		}
	}()
	return ch, nil
}

// Unsubscribe closes every subscriber of channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.hub.closeChannel(channel)
	return nil
}

// Close closes all subscriptions
func (b *MemoryEventBus) Close() error {
	b.once.Do(func() {
		close(b.closed)
		for _, channel := range b.hub.channels() {
			b.hub.closeChannel(channel)
		}
	})
	return nil
}
