package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/logger"
)

// subscriberBuffer bounds each subscriber's channel. A consumer that cannot
// keep up drops events rather than blocking publishers.
const subscriberBuffer = 16

// Hub is an in-process broadcast publisher. It is the default event backend
// for single-instance deployments; the NATS publisher covers multi-instance
// fan-out.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan *Event
	nextID int
	closed bool
}

// NewHub creates an in-process event hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan *Event)}
}

// Publish delivers the event to all current subscribers without blocking
func (h *Hub) Publish(_ context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			logger.Warn("dropping event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("event_type", string(event.Type)))
		}
	}
	return nil
}

// Subscribe registers a new consumer
func (h *Hub) Subscribe() (<-chan *Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan *Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close closes all subscriber channels
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
