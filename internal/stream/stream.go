package stream

import (
	"context"
	"sync"
	"time"
)

// EventType names what happened on the platform.
type EventType string

const (
	EventCooperativeApproved  EventType = "cooperative.approved"
	EventCooperativeRejected  EventType = "cooperative.rejected"
	EventCooperativeSuspended EventType = "cooperative.suspended"
	EventApprovalCreated      EventType = "approval.created"
	EventApprovalDecided      EventType = "approval.decided"
)

// Event is one notification fanned out to subscribers (SSE clients, the
// admin dashboard).
type Event struct {
	Type          EventType         `json:"type"`
	CooperativeID string            `json:"cooperative_id,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Detail        map[string]string `json:"detail,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Hub fan-outs events to all active subscribers. Slow subscribers drop
// events rather than block publishers.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// New initialises an empty hub.
func New() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber whose channel closes when ctx is done.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
