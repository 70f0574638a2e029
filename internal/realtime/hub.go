package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// subscriberBuffer bounds each binding's outbound queue. A consumer that
// falls further behind than this gets messages dropped, not a blocked producer.
const subscriberBuffer = 16

// Hub keeps in-memory channel bindings grouped by topic. Multiple bindings per
// topic are allowed (multi-device); every binding receives every publish for
// its topic. The hub is process-local; cross-instance fan-out goes through the
// RedisBridge.
type Hub struct {
	mu       sync.RWMutex
	bindings map[string]map[chan interface{}]struct{}
}

// NewHub constructs a Hub.
func NewHub() *Hub {
	return &Hub{bindings: make(map[string]map[chan interface{}]struct{})}
}

// Subscribe registers a binding on a topic and returns its delivery channel
// plus an unsubscribe function that must be called on disconnect.
func (h *Hub) Subscribe(topic string) (<-chan interface{}, func()) {
	ch := make(chan interface{}, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.bindings[topic]
	if !ok {
		set = make(map[chan interface{}]struct{})
		h.bindings[topic] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.bindings[topic]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.bindings, topic)
			}
		}
		h.mu.Unlock()
		close(ch)
	}

	return ch, unsubscribe
}

// Publish delivers a message to every binding on the topic. No binding is a
// silent no-op. Sends are non-blocking: a full subscriber queue drops the
// message rather than stalling the publisher, so program order is preserved
// per publisher without any cross-call coordination.
func (h *Hub) Publish(topic string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.bindings[topic] {
		select {
		case ch <- message:
		default:
			log.Warn().Str("topic", topic).Msg("dropping push for slow subscriber")
		}
	}
}

// SubscriberCount reports the number of bindings currently on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bindings[topic])
}
