// Package publisher provides an observable single value: a held last value
// that can be read synchronously plus change notifications fanned out to any
// number of subscribers.
package publisher

import (
	"context"
	"sync"

	"github.com/pitabwire/util"
)

const defaultSubscriberBuffer = 16

// Value holds the latest published value of type T. Every call to Publish
// replaces the held value and notifies all subscribers exactly once, even
// when the new value equals the previous one.
type Value[T any] struct {
	mu          sync.Mutex
	current     T
	subscribers map[int]chan T
	nextID      int
	buffer      int
}

// New creates a publisher seeded with an initial value, so Get never observes
// an absent state.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current:     initial,
		subscribers: make(map[int]chan T),
		buffer:      defaultSubscriberBuffer,
	}
}

// Get returns the last published value immediately.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Publish replaces the held value and emits it to every subscriber. A
// subscriber whose channel is full is skipped with a warning instead of
// blocking the publishing sequence.
func (v *Value[T]) Publish(ctx context.Context, val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = val

	for id, ch := range v.subscribers {
		select {
		case ch <- val:
		default:
			util.Log(ctx).WithField("subscriber", id).
				Warn("dropping publication for slow subscriber")
		}
	}
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is closed and the subscriber removed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	ch := make(chan T, v.buffer)
	v.subscribers[id] = ch
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subscribers, id)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// SubscriberCount reports the number of active subscribers.
func (v *Value[T]) SubscriberCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subscribers)
}
