package sessions

import "github.com/jrsteele09/bountip-console/business"

// SelectionPolicy decides which outlet becomes selected when a session starts.
// Returning nil leaves the selection unset until the user picks one.
type SelectionPolicy func(outlets []business.OutletAccess) *business.OutletID

// SelectNone never preselects an outlet.
func SelectNone(_ []business.OutletAccess) *business.OutletID {
	return nil
}

// SelectFirst selects the first outlet in the list.
func SelectFirst(outlets []business.OutletAccess) *business.OutletID {
	if len(outlets) == 0 {
		return nil
	}
	id := outlets[0].Outlet.ID
	return &id
}

// SelectPrimary selects the outlet flagged as primary, falling back to the first.
func SelectPrimary(outlets []business.OutletAccess) *business.OutletID {
	for _, a := range outlets {
		if a.Outlet.IsPrimary {
			id := a.Outlet.ID
			return &id
		}
	}
	return SelectFirst(outlets)
}
