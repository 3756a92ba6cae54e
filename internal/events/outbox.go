package events

import (
	"errors"
	"sync"
)

// DefaultOutboxCapacity bounds the number of pending events.
const DefaultOutboxCapacity = 10000

var ErrOutboxFull = errors.New("outbox is full")

// Outbox is a FIFO of events waiting to be published.
type Outbox struct {
	mu       sync.Mutex
	pending  []Event
	capacity int
}

func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	return &Outbox{capacity: capacity}
}

func (o *Outbox) Enqueue(e Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) >= o.capacity {
		return ErrOutboxFull
	}
	o.pending = append(o.pending, e)
	return nil
}

// Drain removes and returns up to n of the oldest events.
func (o *Outbox) Drain(n int) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	if n <= 0 || n > len(o.pending) {
		n = len(o.pending)
	}
	batch := make([]Event, n)
	copy(batch, o.pending[:n])
	o.pending = o.pending[n:]
	return batch
}

// Requeue puts events back at the head of the queue, keeping their order.
// Requeued events may exceed the capacity.
func (o *Outbox) Requeue(events ...Event) {
	if len(events) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	pending := make([]Event, 0, len(events)+len(o.pending))
	pending = append(pending, events...)
	o.pending = append(pending, o.pending...)
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
