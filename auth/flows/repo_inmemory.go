package flows

import (
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/bountip-console/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu    sync.RWMutex
	flows map[string]Flow
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		flows: make(map[string]Flow),
	}
}

// Upsert stores a copy of flow under its state.
func (r *InMemoryRepo) Upsert(flow *Flow) error {
	if flow == nil {
		return fmt.Errorf("flow cannot be nil: %w", errors.ErrInvalidInput)
	}
	if flow.State == "" {
		return fmt.Errorf("state cannot be empty: %w", errors.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[flow.State] = *flow
	return nil
}

func (r *InMemoryRepo) Get(state string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, ok := r.flows[state]
	if !ok {
		return nil, fmt.Errorf("flow %q: %w", state, errors.ErrNotFound)
	}
	return &flow, nil
}

func (r *InMemoryRepo) Delete(state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, state)
	return nil
}

func (r *InMemoryRepo) DeleteExpired(cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for state, flow := range r.flows {
		if flow.CreatedAt.Before(cutoff) {
			delete(r.flows, state)
		}
	}
	return nil
}
