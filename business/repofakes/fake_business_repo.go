package businessrepofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/internal/errors"
)

var _ business.Repo = (*FakeBusinessRepo)(nil)

// FakeBusinessRepo serves a fixed business context from memory. Set Err to
// make every call fail.
type FakeBusinessRepo struct {
	lock     sync.RWMutex
	business *business.Business
	outlets  []business.OutletAccess
	Err      error
	calls    int
}

func NewFakeBusinessRepo(b *business.Business, outlets ...business.OutletAccess) *FakeBusinessRepo {
	return &FakeBusinessRepo{
		business: b,
		outlets:  outlets,
	}
}

func (r *FakeBusinessRepo) Business(ctx context.Context) (*business.Business, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls++
	if r.Err != nil {
		return nil, r.Err
	}
	if r.business == nil {
		return nil, errors.ErrNotFound
	}
	b := *r.business
	return &b, nil
}

func (r *FakeBusinessRepo) Outlets(ctx context.Context) ([]business.OutletAccess, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.calls++
	if r.Err != nil {
		return nil, r.Err
	}
	outlets := make([]business.OutletAccess, len(r.outlets))
	for i, o := range r.outlets {
		outlets[i] = o.Clone()
	}
	return outlets, nil
}

// Calls reports how many repo methods have been invoked.
func (r *FakeBusinessRepo) Calls() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.calls
}
