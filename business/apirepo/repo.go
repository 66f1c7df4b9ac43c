// Package apirepo loads the business context from the merchant API.
package apirepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/jrsteele09/bountip-console/apiclient"
	"github.com/jrsteele09/bountip-console/business"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
)

var (
	BusinessPath = apiclient.APIPath("business")
	OutletsPath  = apiclient.APIPath("business", "outlets")
)

var _ business.Repo = (*Repo)(nil)

// Repo reads the business and its outlets with the credentials held under
// one session cookie.
type Repo struct {
	client     *apiclient.Client
	cookieName string
}

func New(client *apiclient.Client, cookieName string) (*Repo, error) {
	if client == nil {
		return nil, errors.New("[NewBusinessRepo] client is required")
	}
	return &Repo{client: client, cookieName: cookieName}, nil
}

type businessDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	LogoURL      *string   `json:"logoUrl"`
	Country      *string   `json:"country"`
	BusinessType *string   `json:"businessType"`
	Address      *string   `json:"address"`
	Currency     *string   `json:"currency"`
	RevenueRange *string   `json:"revenueRange"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	OwnerID      string    `json:"ownerId"`
	// Wire-only fields the console ignores.
	OutletCount int  `json:"outletCount"`
	IsOnboarded bool `json:"isOnboarded"`
}

type outletDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Address    *string   `json:"address"`
	Phone      *string   `json:"phone"`
	Currency   *string   `json:"currency"`
	IsPrimary  bool      `json:"isPrimary"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	BusinessID string    `json:"businessId"`
}

type outletAccessDTO struct {
	Outlet      outletDTO `json:"outlet"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
}

func (r *Repo) Business(ctx context.Context) (*business.Business, error) {
	env, err := apiclient.Get[businessDTO](ctx, r.client, BusinessPath, nil, r.cookieName)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, fmt.Errorf("business: %w", apperrors.ErrNotFound)
	}

	var b business.Business
	if err := copier.Copy(&b, env.Data); err != nil {
		return nil, apperrors.Wrapf(err, "failed to map business %s", env.Data.ID)
	}
	b.Status = business.Status(env.Data.Status)
	return &b, nil
}

func (r *Repo) Outlets(ctx context.Context) ([]business.OutletAccess, error) {
	env, err := apiclient.Get[[]outletAccessDTO](ctx, r.client, OutletsPath, nil, r.cookieName)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return []business.OutletAccess{}, nil
	}

	outlets := make([]business.OutletAccess, 0, len(*env.Data))
	for _, dto := range *env.Data {
		var a business.OutletAccess
		if err := copier.CopyWithOption(&a.Outlet, &dto.Outlet, copier.Option{DeepCopy: true}); err != nil {
			return nil, apperrors.Wrapf(err, "failed to map outlet %d", dto.Outlet.ID)
		}
		a.Role = dto.Role
		if dto.Permissions != nil {
			a.Permissions = append([]string(nil), dto.Permissions...)
		}
		outlets = append(outlets, a)
	}
	return outlets, nil
}
