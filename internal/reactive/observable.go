// Package reactive provides the change-notification mechanism shared by the
// in-memory stores. Listeners receive a snapshot after every mutation.
package reactive

import "sync"

type Listener[T any] func(T)

// Subscribers is a set of listeners for snapshots of type T.
type Subscribers[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener[T]
	order     []int
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is a no-op.
func (s *Subscribers[T]) Subscribe(fn Listener[T]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners == nil {
		s.listeners = make(map[int]Listener[T])
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subscribers[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Notify calls every listener in registration order. Listeners run outside
// the lock so they may read the store or unsubscribe themselves.
func (s *Subscribers[T]) Notify(snapshot T) {
	s.mu.RLock()
	fns := make([]Listener[T], 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Len reports the number of registered listeners.
func (s *Subscribers[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
