package event

import (
	"sync"
	"time"
)

// Bus stamps every published event with a monotonic sequence number and
// fans it out to subscribers. Publish never blocks the engines: a
// subscriber that falls behind loses events rather than stalling
// settlement.
type Bus struct {
	mu      sync.Mutex
	nextSeq uint64
	subs    []chan Event
	now     func() int64
}

// NewBus creates a bus starting at sequence 1.
func NewBus() *Bus {
	return &Bus{
		nextSeq: 1,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Subscribe registers a new subscriber and returns its channel. The buffer
// absorbs publish bursts; size it for the slowest consumer.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

// Publish stamps and delivers an event to every subscriber.
func (b *Bus) Publish(ev Event) {
	s, ok := ev.(stampable)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s.stamp(b.nextSeq, b.now())
	b.nextSeq++

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default: // subscriber full, drop rather than block settlement
		}
	}
}

// Close closes every subscriber channel. Publish must not be called after.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
