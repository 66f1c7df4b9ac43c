package sessions_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
	"github.com/stretchr/testify/require"
)

func testBusiness() *business.Business {
	return &business.Business{
		ID:        "biz-1",
		Name:      "Mama Put",
		Slug:      "mama-put",
		Status:    business.StatusActive,
		OwnerID:   "user-1",
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func access(id business.OutletID, name string) business.OutletAccess {
	return business.OutletAccess{
		Outlet:      business.Outlet{ID: id, Name: name, IsActive: true},
		Role:        "manager",
		Permissions: []string{"inventory.read"},
	}
}

func TestStore_InitialState(t *testing.T) {
	s := sessions.NewStore()

	require.Nil(t, s.Business())
	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.OutletAccesses())
	require.Empty(t, s.Outlets())
	require.Nil(t, s.SelectedOutlet())
	_, ok := s.SelectedOutletID()
	require.False(t, ok)
}

func TestStore_OutletSwitch(t *testing.T) {
	s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectFirst))
	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "Ikeja"), access(2, "Lekki")}))

	selected := s.SelectedOutlet()
	require.NotNil(t, selected)
	require.Equal(t, business.OutletID(1), selected.Outlet.ID)

	before := s.Snapshot()
	require.NoError(t, s.SelectOutlet(2))
	after := s.Snapshot()

	selected = s.SelectedOutlet()
	require.NotNil(t, selected)
	require.Equal(t, business.OutletID(2), selected.Outlet.ID)

	require.Equal(t, before.Business, after.Business)
	require.Equal(t, before.Outlets, after.Outlets)
	require.Equal(t, business.OutletID(2), *after.SelectedOutletID)
}

func TestStore_SelectUnknownOutlet(t *testing.T) {
	s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectFirst))
	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "Ikeja")}))

	err := s.SelectOutlet(99)
	require.ErrorIs(t, err, errors.ErrOutletNotFound)

	id, ok := s.SelectedOutletID()
	require.True(t, ok)
	require.Equal(t, business.OutletID(1), id)
}

func TestStore_SetOutletsClearsStaleSelection(t *testing.T) {
	s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectFirst))
	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "Ikeja"), access(2, "Lekki")}))
	require.NoError(t, s.SelectOutlet(2))

	t.Run("selection kept when still present", func(t *testing.T) {
		require.NoError(t, s.SetOutlets([]business.OutletAccess{access(2, "Lekki"), access(3, "Yaba")}))
		selected := s.SelectedOutlet()
		require.NotNil(t, selected)
		require.Equal(t, business.OutletID(2), selected.Outlet.ID)
	})

	t.Run("selection cleared when removed", func(t *testing.T) {
		require.NoError(t, s.SetOutlets([]business.OutletAccess{access(3, "Yaba")}))
		require.Nil(t, s.SelectedOutlet())
		_, ok := s.SelectedOutletID()
		require.False(t, ok)
	})
}

func TestStore_SelectedOutletUnmatched(t *testing.T) {
	lists := [][]business.OutletAccess{
		nil,
		{},
		{access(1, "a")},
		{access(1, "a"), access(2, "b"), access(3, "c")},
	}
	for _, outlets := range lists {
		s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectNone))
		require.NoError(t, s.SignIn(testBusiness(), outlets))
		require.Nil(t, s.SelectedOutlet())
		require.Error(t, s.SelectOutlet(42))
		require.Nil(t, s.SelectedOutlet())
	}
}

func TestStore_DuplicateOutletsRejected(t *testing.T) {
	s := sessions.NewStore()

	err := s.SignIn(testBusiness(), []business.OutletAccess{access(1, "a"), access(1, "b")})
	require.ErrorIs(t, err, errors.ErrDuplicateOutlet)
	require.False(t, s.IsAuthenticated())

	err = s.SetOutlets([]business.OutletAccess{access(5, "a"), access(5, "b")})
	require.ErrorIs(t, err, errors.ErrDuplicateOutlet)
	require.Empty(t, s.OutletAccesses())
}

func TestStore_BareOutletsPreserveOrder(t *testing.T) {
	s := sessions.NewStore()
	require.NoError(t, s.SetOutlets([]business.OutletAccess{access(3, "c"), access(1, "a"), access(2, "b")}))

	outlets := s.Outlets()
	require.Len(t, outlets, 3)
	require.Equal(t, []business.OutletID{3, 1, 2}, []business.OutletID{outlets[0].ID, outlets[1].ID, outlets[2].ID})
}

func TestStore_SelectionPolicies(t *testing.T) {
	primary := access(2, "HQ")
	primary.Outlet.IsPrimary = true
	outlets := []business.OutletAccess{access(1, "a"), primary}

	t.Run("primary", func(t *testing.T) {
		s := sessions.NewStore()
		require.NoError(t, s.SignIn(testBusiness(), outlets))
		id, ok := s.SelectedOutletID()
		require.True(t, ok)
		require.Equal(t, business.OutletID(2), id)
	})

	t.Run("primary falls back to first", func(t *testing.T) {
		s := sessions.NewStore()
		require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(7, "a"), access(8, "b")}))
		id, ok := s.SelectedOutletID()
		require.True(t, ok)
		require.Equal(t, business.OutletID(7), id)
	})

	t.Run("none", func(t *testing.T) {
		s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectNone))
		require.NoError(t, s.SignIn(testBusiness(), outlets))
		_, ok := s.SelectedOutletID()
		require.False(t, ok)
	})

	t.Run("policy returning unknown id is ignored", func(t *testing.T) {
		bogus := func([]business.OutletAccess) *business.OutletID {
			id := business.OutletID(99)
			return &id
		}
		s := sessions.NewStore(sessions.WithSelectionPolicy(bogus))
		require.NoError(t, s.SignIn(testBusiness(), outlets))
		require.Nil(t, s.SelectedOutlet())
	})
}

func TestStore_SignOut(t *testing.T) {
	s := sessions.NewStore()
	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "a")}))

	s.SignOut()

	require.Equal(t, sessions.State{}, s.Snapshot())
	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.SelectedOutlet())
}

func TestStore_ViewsAreCopies(t *testing.T) {
	s := sessions.NewStore()
	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "a")}))

	b := s.Business()
	b.Name = "changed"
	accesses := s.OutletAccesses()
	accesses[0].Permissions[0] = "changed"
	accesses[0].Outlet.Name = "changed"

	require.Equal(t, "Mama Put", s.Business().Name)
	require.Equal(t, "inventory.read", s.OutletAccesses()[0].Permissions[0])
	require.Equal(t, "a", s.Outlets()[0].Name)
}

func TestStore_Subscribe(t *testing.T) {
	s := sessions.NewStore(sessions.WithSelectionPolicy(sessions.SelectNone))
	var states []sessions.State
	unsubscribe := s.Subscribe(func(st sessions.State) { states = append(states, st) })

	require.NoError(t, s.SignIn(testBusiness(), []business.OutletAccess{access(1, "a")}))
	require.NoError(t, s.SelectOutlet(1))
	require.Error(t, s.SelectOutlet(2))
	unsubscribe()
	s.SignOut()

	require.Len(t, states, 2)
	require.Nil(t, states[0].SelectedOutletID)
	require.Equal(t, business.OutletID(1), *states[1].SelectedOutletID)
}
