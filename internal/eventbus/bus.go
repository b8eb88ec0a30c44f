// Package eventbus keeps a bounded, sequenced log of recent events for
// polling UI clients.
package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSize is the history length used when none is given.
const DefaultSize = 500

// Event is one sequenced payload.
type Event struct {
	Seq       uint64
	Timestamp time.Time
	Kind      string
	Payload   any
}

// Bus stores recent events and provides incremental reads.
type Bus struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	nextSeq uint64
	size    int
	events  []Event
	notify  chan struct{}
}

// New creates a bus that keeps the last size events.
func New(clock clockwork.Clock, size int) *Bus {
	if size <= 0 {
		size = DefaultSize
	}
	return &Bus{
		clock:  clock,
		size:   size,
		events: make([]Event, 0, size),
		notify: make(chan struct{}),
	}
}

// Publish appends an event and returns its sequence number.
func (b *Bus) Publish(kind string, payload any) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	b.events = append(b.events, Event{
		Seq:       b.nextSeq,
		Timestamp: b.clock.Now().UTC(),
		Kind:      kind,
		Payload:   payload,
	})
	if len(b.events) > b.size {
		trim := len(b.events) - b.size
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	close(b.notify)
	b.notify = make(chan struct{})
	return b.nextSeq
}

// Last returns the sequence number of the newest event.
func (b *Bus) Last() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nextSeq
}

// Since returns retained events with sequence strictly greater than seq.
func (b *Bus) Since(seq uint64) []Event {
	events, _ := b.since(seq)
	return events
}

// WaitSince is Since that blocks until at least one newer event exists or
// ctx is done. A done ctx returns an empty result and ctx.Err().
func (b *Bus) WaitSince(ctx context.Context, seq uint64) ([]Event, error) {
	for {
		events, notify := b.since(seq)
		if len(events) > 0 {
			return events, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-notify:
		}
	}
}

func (b *Bus) since(seq uint64) ([]Event, <-chan struct{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 || b.nextSeq <= seq {
		return nil, b.notify
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out, b.notify
}
