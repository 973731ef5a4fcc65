package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

const subscriberBuffer = 100

// hub fans item events out to local subscriber channels, per bus channel name
type hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.ItemEvent]struct{}
}

func newHub() *hub {
	return &hub{subscribers: make(map[string]map[chan *entities.ItemEvent]struct{})}
}

func (h *hub) add(channel string) (chan *entities.ItemEvent, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan *entities.ItemEvent]struct{})
	}
	ch := make(chan *entities.ItemEvent, subscriberBuffer)
	h.subscribers[channel][ch] = struct{}{}
	return ch, len(h.subscribers[channel])
}

// remove closes ch and reports how many subscribers remain on channel
func (h *hub) remove(channel string, ch chan *entities.ItemEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[channel]
	if !ok {
		return 0
	}
	if _, ok := subs[ch]; !ok {
		return len(subs)
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(h.subscribers, channel)
	}
	return len(subs)
}

func (h *hub) closeChannel(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[channel] {
		close(ch)
	}
	delete(h.subscribers, channel)
}

func (h *hub) channels() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.subscribers))
	for name := range h.subscribers {
		names = append(names, name)
	}
	return names
}

// broadcast never blocks; a full subscriber misses the event
func (h *hub) broadcast(channel string, event *entities.ItemEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, dropping event")
		}
	}
}
