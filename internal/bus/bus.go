// Package bus is the in-process event bus. The bridge fans webhooks out
// through it and the client observes status and channel changes on it.
package bus

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Bus delivers events to subscribers whose prefix matches the event kind.
// Delivery never blocks the publisher: a full subscriber misses the event
// and the miss is counted.
type Bus struct {
	mu      sync.RWMutex
	topics  map[uint64]topic
	seq     uint64
	dropped atomic.Uint64
}

type topic struct {
	prefix string
	out    chan Event
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{topics: make(map[uint64]topic)}
}

// Publish hands evt to every matching subscriber. An empty prefix matches
// everything.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, tp := range b.topics {
		if !strings.HasPrefix(evt.Kind, tp.prefix) {
			continue
		}
		select {
		case tp.out <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Emit publishes kind with payload stamped now. No-op on a nil bus so
// components can run without one.
func (b *Bus) Emit(kind string, payload any) {
	if b == nil {
		return
	}
	b.Publish(Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// Subscribe registers a buffered channel for kinds starting with prefix.
// The returned func unsubscribes and may be called more than once. The
// channel is never closed.
func (b *Bus) Subscribe(prefix string, size int) (<-chan Event, func()) {
	out := make(chan Event, size)

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.topics[id] = topic{prefix: prefix, out: out}
	b.mu.Unlock()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.topics, id)
			b.mu.Unlock()
		})
	}
}

// Listen calls fn for each event matching prefix until ctx is done. fn runs
// on the calling goroutine, one event at a time.
func (b *Bus) Listen(ctx context.Context, prefix string, size int, fn func(Event)) {
	events, unsub := b.Subscribe(prefix, size)
	defer unsub()
	for {
		select {
		case evt := <-events:
			fn(evt)
		case <-ctx.Done():
			return
		}
	}
}

// Subscribers is the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics)
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
