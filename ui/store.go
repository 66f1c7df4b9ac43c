// Package ui holds presentation flags shared across screens. Nothing here
// is persisted.
package ui

import (
	"sync"

	"github.com/jrsteele09/bountip-console/internal/reactive"
)

// State is a snapshot of the UI flags.
type State struct {
	SuccessModalOpen bool
	Loading          bool
	SidebarExpanded  bool
	PendingRequests  int
}

// Store owns the UI flags. Each flag is independent of the others, except
// that Loading tracks PendingRequests while BeginLoading/EndLoading are in use.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers reactive.Subscribers[State]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.subscribers.Subscribe(fn)
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) SuccessModalOpen() bool {
	return s.Snapshot().SuccessModalOpen
}

func (s *Store) SetSuccessModalOpen(open bool) {
	s.mutate(func(st *State) { st.SuccessModalOpen = open })
}

func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

// SetLoading sets the flag directly. It does not touch PendingRequests.
func (s *Store) SetLoading(loading bool) {
	s.mutate(func(st *State) { st.Loading = loading })
}

func (s *Store) SidebarExpanded() bool {
	return s.Snapshot().SidebarExpanded
}

func (s *Store) SetSidebarExpanded(expanded bool) {
	s.mutate(func(st *State) { st.SidebarExpanded = expanded })
}

func (s *Store) ToggleSidebar() {
	s.mutate(func(st *State) { st.SidebarExpanded = !st.SidebarExpanded })
}

func (s *Store) PendingRequests() int {
	return s.Snapshot().PendingRequests
}

// BeginLoading counts one more request in flight and raises Loading.
func (s *Store) BeginLoading() {
	s.mutate(func(st *State) {
		st.PendingRequests++
		st.Loading = true
	})
}

// EndLoading counts a request as finished. Loading drops once nothing is in
// flight. Extra calls are ignored.
func (s *Store) EndLoading() {
	s.mutate(func(st *State) {
		if st.PendingRequests > 0 {
			st.PendingRequests--
		}
		st.Loading = st.PendingRequests > 0
	})
}

// Track wraps fn in BeginLoading/EndLoading.
func (s *Store) Track(fn func() error) error {
	s.BeginLoading()
	defer s.EndLoading()
	return fn()
}

// Reset returns every flag to its initial value.
func (s *Store) Reset() {
	s.mutate(func(st *State) { *st = State{} })
}

func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	before := s.state
	fn(&s.state)
	after := s.state
	s.mu.Unlock()

	if before != after {
		s.subscribers.Notify(after)
	}
}
