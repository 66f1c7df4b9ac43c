package sessions

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/internal/reactive"
	"github.com/jrsteele09/bountip-console/internal/utils"
)

// State is the in-memory business context of a signed-in user.
type State struct {
	Business         *business.Business
	Outlets          []business.OutletAccess
	SelectedOutletID *business.OutletID
}

func (s State) clone() State {
	c := State{
		Business:         utils.Clone(s.Business),
		SelectedOutletID: utils.Clone(s.SelectedOutletID),
	}
	if s.Outlets != nil {
		c.Outlets = make([]business.OutletAccess, len(s.Outlets))
		for i, a := range s.Outlets {
			c.Outlets[i] = a.Clone()
		}
	}
	return c
}

// Store owns the session's business, outlets and outlet selection. Create one
// per application and pass it to whatever needs it. Views are computed from the
// current state on every call.
type Store struct {
	mu          sync.RWMutex
	state       State
	policy      SelectionPolicy
	subscribers reactive.Subscribers[State]
	logger      zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithSelectionPolicy sets how the initial outlet is chosen on SignIn.
func WithSelectionPolicy(policy SelectionPolicy) StoreOption {
	return func(s *Store) {
		if policy != nil {
			s.policy = policy
		}
	}
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(options ...StoreOption) *Store {
	s := &Store{
		policy: SelectPrimary,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.subscribers.Subscribe(fn)
}

// mutate applies fn under the write lock and notifies subscribers afterwards.
func (s *Store) mutate(fn func(st *State) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.subscribers.Notify(snapshot)
	return nil
}

// SetBusiness replaces the current business. Outlets and selection are untouched.
func (s *Store) SetBusiness(b *business.Business) {
	_ = s.mutate(func(st *State) error {
		st.Business = utils.Clone(b)
		return nil
	})
}

// SetOutlets replaces the outlet list. Outlet ids must be unique. A selection
// that no longer matches any outlet is cleared.
func (s *Store) SetOutlets(outlets []business.OutletAccess) error {
	if err := validateOutlets(outlets); err != nil {
		return err
	}
	return s.mutate(func(st *State) error {
		st.Outlets = cloneOutlets(outlets)
		if st.SelectedOutletID != nil && indexOf(st.Outlets, *st.SelectedOutletID) < 0 {
			s.logger.Debug().
				Int64("outlet_id", *st.SelectedOutletID).
				Msg("selected outlet no longer available, clearing selection")
			st.SelectedOutletID = nil
		}
		return nil
	})
}

// SelectOutlet switches the selected outlet. Only the selection changes.
func (s *Store) SelectOutlet(id business.OutletID) error {
	return s.mutate(func(st *State) error {
		if indexOf(st.Outlets, id) < 0 {
			return fmt.Errorf("select outlet %d: %w", id, errors.ErrOutletNotFound)
		}
		st.SelectedOutletID = utils.Ptr(id)
		s.logger.Debug().
			Int64("outlet_id", id).
			Msg("outlet switched")
		return nil
	})
}

// ClearSelection unsets the selected outlet.
func (s *Store) ClearSelection() {
	_ = s.mutate(func(st *State) error {
		st.SelectedOutletID = nil
		return nil
	})
}

// SignIn populates the store for a freshly authenticated session and applies
// the selection policy.
func (s *Store) SignIn(b *business.Business, outlets []business.OutletAccess) error {
	if b == nil {
		return fmt.Errorf("sign in: business is required: %w", errors.ErrInvalidInput)
	}
	if err := validateOutlets(outlets); err != nil {
		return err
	}
	return s.mutate(func(st *State) error {
		st.Business = utils.Clone(b)
		st.Outlets = cloneOutlets(outlets)
		st.SelectedOutletID = nil
		if id := s.policy(st.Outlets); id != nil && indexOf(st.Outlets, *id) >= 0 {
			st.SelectedOutletID = utils.Ptr(*id)
		}
		s.logger.Info().
			Str("business_id", b.ID).
			Int("outlets", len(outlets)).
			Msg("session started")
		return nil
	})
}

// SignOut resets every field to its initial value.
func (s *Store) SignOut() {
	_ = s.mutate(func(st *State) error {
		*st = State{}
		s.logger.Info().Msg("session cleared")
		return nil
	})
}

// Business returns the current business or nil.
func (s *Store) Business() *business.Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.Clone(s.state.Business)
}

// IsAuthenticated reports whether a business has been loaded.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Business != nil
}

// OutletAccesses returns every outlet access in its original order.
func (s *Store) OutletAccesses() []business.OutletAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOutlets(s.state.Outlets)
}

// Outlets returns the bare outlets with the access wrapper stripped, in order.
func (s *Store) Outlets() []business.Outlet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outlets := make([]business.Outlet, 0, len(s.state.Outlets))
	for _, a := range s.state.Outlets {
		outlets = append(outlets, a.Outlet)
	}
	return outlets
}

// SelectedOutletID returns the selected id, if any.
func (s *Store) SelectedOutletID() (business.OutletID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.SelectedOutletID == nil {
		return 0, false
	}
	return *s.state.SelectedOutletID, true
}

// SelectedOutlet returns the first outlet access matching the selected id, or
// nil when nothing is selected or the id matches no outlet.
func (s *Store) SelectedOutlet() *business.OutletAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.SelectedOutletID == nil {
		return nil
	}
	i := indexOf(s.state.Outlets, *s.state.SelectedOutletID)
	if i < 0 {
		return nil
	}
	a := s.state.Outlets[i].Clone()
	return &a
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// indexOf is a linear scan; outlet counts are in the tens.
func indexOf(outlets []business.OutletAccess, id business.OutletID) int {
	for i, a := range outlets {
		if a.Outlet.ID == id {
			return i
		}
	}
	return -1
}

func validateOutlets(outlets []business.OutletAccess) error {
	seen := make(map[business.OutletID]struct{}, len(outlets))
	for _, a := range outlets {
		if _, ok := seen[a.Outlet.ID]; ok {
			return fmt.Errorf("outlet %d: %w", a.Outlet.ID, errors.ErrDuplicateOutlet)
		}
		seen[a.Outlet.ID] = struct{}{}
	}
	return nil
}

func cloneOutlets(outlets []business.OutletAccess) []business.OutletAccess {
	if outlets == nil {
		return nil
	}
	c := make([]business.OutletAccess, len(outlets))
	for i, a := range outlets {
		c[i] = a.Clone()
	}
	return c
}
