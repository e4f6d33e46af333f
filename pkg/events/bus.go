package events

import (
	"sync"
	"time"

	"solver/pkg/logx"
)

// subscriberBuffer is the channel capacity for each subscriber. A
// subscriber that falls this far behind is dropped rather than allowed
// to stall the solving loop.
const subscriberBuffer = 256

// Bus fans events out to subscribers. Publishing assigns the sequence
// number and timestamp; the history is retained so late subscribers can
// replay everything from the start of the session.
type Bus struct {
	subscribers map[int]chan Event
	logger      *logx.Logger
	history     []Event
	nextID      int
	seq         uint64
	closed      bool
	mu          sync.Mutex
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		logger:      logx.NewLogger("events"),
	}
}

// Publish stamps the event and delivers it to every subscriber in
// order. Returns the stamped event.
func (b *Bus) Publish(eventType Type, data map[string]any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	event := Event{
		Type:      eventType,
		Sequence:  b.seq,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	b.history = append(b.history, event)

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber too far behind; drop it to keep ordering
			// guarantees for everyone else.
			b.logger.Warn("dropping slow event subscriber %d at sequence %d", id, event.Sequence)
			close(ch)
			delete(b.subscribers, id)
		}
	}

	return event
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. If replay is true the session history so far is
// queued on the channel before any live events.
func (b *Bus) Subscribe(replay bool) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		// The stream has ended; late subscribers still get the full
		// history, followed by channel close.
		ch := make(chan Event, len(b.history))
		if replay {
			for _, event := range b.history {
				ch <- event
			}
		}
		close(ch)
		return ch, func() {}
	}

	capacity := subscriberBuffer
	if replay && len(b.history) > capacity {
		capacity = len(b.history) + subscriberBuffer
	}
	ch := make(chan Event, capacity)

	if replay {
		for _, event := range b.history {
			ch <- event
		}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			close(sub)
			delete(b.subscribers, id)
		}
	}
	return ch, unsubscribe
}

// History returns a copy of all events published so far.
func (b *Bus) History() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]Event, len(b.history))
	copy(result, b.history)
	return result
}

// Close marks the stream ended and closes all subscriber channels. The
// history remains available to late subscribers.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
