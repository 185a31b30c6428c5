// Package notify fans recomputed datasets out to live subscribers.
package notify

import (
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/balkashynov/floortrack/internal/metrics"
)

// Subscription receives datasets on C until it is unsubscribed or the hub
// closes
type Subscription struct {
	ID string
	C  <-chan metrics.Dataset

	ch chan metrics.Dataset
}

// Hub keeps the latest dataset and broadcasts new ones. Each subscriber
// holds at most one undelivered dataset; a newer one replaces it.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	latest *metrics.Dataset
	closed bool
	logger *log.Logger
}

// NewHub returns an empty hub
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{subs: make(map[string]*Subscription), logger: logger}
}

// Publish stores ds as the latest dataset and offers it to every subscriber
// without blocking
func (h *Hub) Publish(ds metrics.Dataset) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = &ds
	for _, sub := range h.subs {
		offer(sub.ch, ds)
	}
}

// offer replaces a pending dataset with ds
func offer(ch chan metrics.Dataset, ds metrics.Dataset) {
	select {
	case ch <- ds:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ds:
	default:
	}
}

// Subscribe registers a subscriber. The latest dataset, if any, is already
// waiting on C.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan metrics.Dataset, 1)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	if h.latest != nil {
		ch <- *h.latest
	}
	h.subs[sub.ID] = sub
	h.logger.Printf("subscriber %s joined (%d total)", sub.ID, len(h.subs))
	return sub
}

// Unsubscribe removes the subscriber and closes its channel
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
	h.logger.Printf("subscriber %s left (%d total)", sub.ID, len(h.subs))
}

// Latest returns the last published dataset
func (h *Hub) Latest() (metrics.Dataset, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return metrics.Dataset{}, false
	}
	return *h.latest, true
}

// Count returns the number of live subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}
