package business

import "context"

// Repo loads the business context of the signed-in user.
type Repo interface {
	Business(ctx context.Context) (*Business, error)
	Outlets(ctx context.Context) ([]OutletAccess, error)
}
