// Package bootstrap decides where a freshly started console lands and
// rehydrates the session store from the persisted token pair.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jrsteele09/bountip-console/apiclient"
	"github.com/jrsteele09/bountip-console/auth"
	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/sessions"
	"github.com/jrsteele09/bountip-console/ui"
)

type Route string

const (
	RouteSignIn    Route = "/auth/signin"
	RouteDashboard Route = "/dashboard"
)

// Outcome is the result of a bootstrap run.
type Outcome struct {
	Route          Route
	Tokens         sessions.TokenPair
	SessionExpired bool // The API rejected the stored tokens
}

type Bootstrapper struct {
	tokens *auth.Tokens
	store  *sessions.Store
	loader business.Repo
	ui     *ui.Store
	logger zerolog.Logger
}

// BootstrapperOption defines a function type to modify the Bootstrapper instance.
type BootstrapperOption func(*Bootstrapper)

// WithLoader fetches the business context after the cookie check. Without
// one, Run only decides the route.
func WithLoader(loader business.Repo) BootstrapperOption {
	return func(b *Bootstrapper) {
		b.loader = loader
	}
}

// WithUIStore reports loading progress on the UI store.
func WithUIStore(store *ui.Store) BootstrapperOption {
	return func(b *Bootstrapper) {
		b.ui = store
	}
}

func WithLogger(logger zerolog.Logger) BootstrapperOption {
	return func(b *Bootstrapper) {
		b.logger = logger
	}
}

func New(tokens *auth.Tokens, store *sessions.Store, options ...BootstrapperOption) (*Bootstrapper, error) {
	if tokens == nil {
		return nil, errors.New("[NewBootstrapper] tokens is required")
	}
	if store == nil {
		return nil, errors.New("[NewBootstrapper] session store is required")
	}

	b := &Bootstrapper{
		tokens: tokens,
		store:  store,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Run reads the session cookie once. Without an access token the user goes
// to sign-in; otherwise to the dashboard, after loading the business context
// when a loader is configured. A 401 while loading is treated as an expired
// session. Other load failures are returned with the dashboard route so the
// caller can retry.
func (b *Bootstrapper) Run(ctx context.Context) (Outcome, error) {
	pair, ok := b.tokens.Load()
	if !ok {
		b.store.SignOut()
		b.logger.Debug().Str("cookie", b.tokens.CookieName()).Msg("no session cookie")
		return Outcome{Route: RouteSignIn}, nil
	}

	outcome := Outcome{Route: RouteDashboard, Tokens: pair}
	if b.loader == nil {
		return outcome, nil
	}

	load := func() error { return b.load(ctx) }
	var err error
	if b.ui != nil {
		err = b.ui.Track(load)
	} else {
		err = load()
	}

	switch {
	case err == nil:
		return outcome, nil
	case apiclient.IsUnauthorized(err):
		b.logger.Info().Msg("session rejected by the api, signing out")
		if clearErr := auth.SignOut(b.tokens, b.store); clearErr != nil {
			return Outcome{Route: RouteSignIn, SessionExpired: true}, clearErr
		}
		return Outcome{Route: RouteSignIn, SessionExpired: true}, nil
	default:
		b.logger.Warn().Err(err).Msg("failed to load business context")
		return outcome, err
	}
}

func (b *Bootstrapper) load(ctx context.Context) error {
	var (
		current *business.Business
		outlets []business.OutletAccess
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = b.loader.Business(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		outlets, err = b.loader.Outlets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := b.store.SignIn(current, outlets); err != nil {
		return fmt.Errorf("failed to populate session: %w", err)
	}
	return nil
}
