package util

import (
	"sync"
)

// AtomicEvent keeps only the latest value sent to it and signals waiting
// readers without ever blocking the sender. A slow reader misses
// intermediate values, which is what a display wants.
type AtomicEvent[T any] struct {
	mu     sync.Mutex
	value  T
	seq    uint64
	notify chan struct{} // capacity 1, a pending signal is never duplicated
}

// NewAtomicEvent creates a new AtomicEvent instance.
func NewAtomicEvent[T any]() *AtomicEvent[T] {
	return &AtomicEvent[T]{
		notify: make(chan struct{}, 1),
	}
}

// Send stores event as the latest value. It never blocks.
func (ae *AtomicEvent[T]) Send(event T) {
	ae.mu.Lock()
	ae.value = event
	ae.seq++
	ae.mu.Unlock()

	select {
	case ae.notify <- struct{}{}:
	default:
	}
}

// Channel returns the notification channel for use in select statements.
func (ae *AtomicEvent[T]) Channel() <-chan struct{} {
	return ae.notify
}

// Value returns the latest value and how many values were sent so far.
func (ae *AtomicEvent[T]) Value() (T, uint64) {
	ae.mu.Lock()
	defer ae.mu.Unlock()
	return ae.value, ae.seq
}

// HasPending reports if a notification is waiting to be consumed.
func (ae *AtomicEvent[T]) HasPending() bool {
	return len(ae.notify) > 0
}
