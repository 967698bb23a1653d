// Package relay fans entity-change events out to in-process subscribers
// (websocket gateway) and to external sinks (Kafka, cache invalidation).
// The hub is ephemeral and rebuildable; it is never authoritative state.
package relay

import (
	"context"
	"sync"
	"time"
)

type EntityKind string

const (
	KindItem        EntityKind = "item"
	KindResponse    EntityKind = "response"
	KindParticipant EntityKind = "participant"
	KindMessage     EntityKind = "message"
	KindReview      EntityKind = "review"
)

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Event describes one committed entity change. At carries the commit-side
// timestamp so subscribers can apply events idempotently by comparing it
// against what they already hold for the entity id.
type Event struct {
	Kind     EntityKind  `json:"entity"`
	Change   ChangeKind  `json:"change"`
	EntityID string      `json:"entity_id"`
	ItemID   string      `json:"item_id,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
	At       time.Time   `json:"at"`
}

// Sink receives every published event. Sink failures never propagate to the
// publisher; implementations log and move on.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Interest selects which events a subscription receives. Zero values match
// everything.
type Interest struct {
	Kind   EntityKind
	ItemID string
}

func (i Interest) matches(e Event) bool {
	if i.Kind != "" && i.Kind != e.Kind {
		return false
	}
	if i.ItemID != "" && i.ItemID != e.ItemID {
		return false
	}
	return true
}

// Subscription delivers matching events on C until Close is called. Slow
// consumers drop events rather than block the publisher; Kafka carries the
// durable at-least-once stream.
type Subscription struct {
	C        chan Event
	interest Interest
	hub      *Hub
	once     sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.C)
	})
}

const subscriptionBuffer = 32

// Hub is the in-process fan-out point for entity-change events.
type Hub struct {
	mu    sync.RWMutex
	subs  map[*Subscription]struct{}
	sinks []Sink
}

// NewHub creates a hub wired to the given external sinks.
func NewHub(sinks ...Sink) *Hub {
	return &Hub{
		subs:  make(map[*Subscription]struct{}),
		sinks: sinks,
	}
}

// Subscribe registers interest in a slice of the event stream.
func (h *Hub) Subscribe(interest Interest) *Subscription {
	sub := &Subscription{
		C:        make(chan Event, subscriptionBuffer),
		interest: interest,
		hub:      h,
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Publish delivers the event to matching subscriptions and every sink.
// Never blocks the caller.
func (h *Hub) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	h.mu.RLock()
	for sub := range h.subs {
		if !sub.interest.matches(event) {
			continue
		}
		select {
		case sub.C <- event:
		default:
			// Subscriber is behind; it reconciles from the store.
		}
	}
	h.mu.RUnlock()

	for _, sink := range h.sinks {
		sink.Publish(ctx, event)
	}
}
