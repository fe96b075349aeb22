// Package event provides a small typed publish/subscribe primitive used
// to fan out channel messages, status changes and session events to
// multiple independent subscribers.
package event

import "sync"

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subject is a typed observer set. Handlers are invoked synchronously in
// registration order, and a panicking handler never prevents delivery to
// the handlers registered after it.
type Subject[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers a handler and returns its disposer. Disposing
// twice is a no-op.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers v to every current subscriber in registration order.
// The handler list is snapshotted first, so subscribing or disposing
// from within a handler takes effect on the next publish.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		invoke(sub.fn, v)
	}
}

// invoke calls a handler, swallowing panics so one misbehaving
// subscriber cannot break delivery to the rest.
func invoke[T any](fn func(T), v T) {
	defer func() {
		_ = recover()
	}()
	fn(v)
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
