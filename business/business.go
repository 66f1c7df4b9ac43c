package business

import "time"

// Status is the lifecycle state of a business account.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Business is the merchant account the signed-in user is working in. One
// business is current per session.
type Business struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Status       Status    `json:"status"`
	LogoURL      *string   `json:"logoUrl,omitempty"`
	Country      *string   `json:"country,omitempty"`
	BusinessType *string   `json:"businessType,omitempty"`
	Address      *string   `json:"address,omitempty"`
	Currency     *string   `json:"currency,omitempty"`
	RevenueRange *string   `json:"revenueRange,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	OwnerID      string    `json:"ownerId"`
}

func (b *Business) IsActive() bool {
	return b != nil && b.Status == StatusActive
}

// OutletID identifies an outlet within its business.
type OutletID = int64

// Outlet is a point of sale belonging to a business.
type Outlet struct {
	ID        OutletID  `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Currency  *string   `json:"currency,omitempty"`
	IsPrimary bool      `json:"isPrimary"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// OutletAccess pairs an outlet with the current user's role for it. Role and
// Permissions are opaque to the console core.
type OutletAccess struct {
	Outlet      Outlet   `json:"outlet"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Clone copies the permission slice so snapshots never share it with callers.
func (a OutletAccess) Clone() OutletAccess {
	c := a
	if a.Permissions != nil {
		c.Permissions = append([]string(nil), a.Permissions...)
	}
	return c
}

// HasPermission reports whether the access grants perm.
func (a OutletAccess) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
