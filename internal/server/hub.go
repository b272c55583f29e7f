package server

import (
	"sync"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

const (
	// SubscriberBuffer is how many events a subscriber may lag behind.
	SubscriberBuffer = 32
	// HistorySize is how many past events are replayed to new subscribers.
	HistorySize = 64
)

// Hub fans orchestrator events out to stream subscribers. A subscriber that
// falls behind loses events rather than stalling the others.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan types.Event]struct{}
	history []types.Event
	closed  bool
	onDrop  func()
}

// NewHub returns a Hub. onDrop, if set, is called once per dropped event.
func NewHub(onDrop func()) *Hub {
	return &Hub{
		subs:   make(map[chan types.Event]struct{}),
		onDrop: onDrop,
	}
}

// Subscribe registers a subscriber. Past events are queued first. The
// returned channel is closed by unsubscribe or when the hub closes.
func (h *Hub) Subscribe() (<-chan types.Event, func()) {
	ch := make(chan types.Event, SubscriberBuffer+HistorySize)

	h.mu.Lock()
	for _, e := range h.history {
		ch <- e
	}
	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

// Publish delivers e to every subscriber without blocking.
func (h *Hub) Publish(e types.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.history = append(h.history, e)
	if len(h.history) > HistorySize {
		h.history = h.history[len(h.history)-HistorySize:]
	}

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			if h.onDrop != nil {
				h.onDrop()
			}
		}
	}
}

// Forward publishes every event from events until it is closed, then
// closes the hub.
func (h *Hub) Forward(events <-chan types.Event) {
	for e := range events {
		h.Publish(e)
	}
	h.Close()
}

// Close ends all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
