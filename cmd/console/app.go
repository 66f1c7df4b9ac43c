package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/bountip-console/apiclient"
	"github.com/jrsteele09/bountip-console/auth"
	"github.com/jrsteele09/bountip-console/bootstrap"
	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/business/apirepo"
	"github.com/jrsteele09/bountip-console/cookies"
	"github.com/jrsteele09/bountip-console/internal/config"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/internal/utils"
	"github.com/jrsteele09/bountip-console/sessions"
	"github.com/jrsteele09/bountip-console/ui"
	"github.com/jrsteele09/bountip-console/upload"
)

// selectedOutletCookie remembers the outlet choice between runs.
const selectedOutletCookie = "bountipSelectedOutlet"

type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	jar     cookies.Store
	client  *apiclient.Client
	tokens  *auth.Tokens
	session *sessions.Store
	ui      *ui.Store
	repo    *apirepo.Repo
	uploads *upload.Service
}

func newApp(c config.Config, logger zerolog.Logger) (*app, error) {
	jar, err := newJar(c, logger)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.New(c, jar,
		apiclient.WithLogger(logger),
		apiclient.WithDefaultCookie(c.GetSessionCookieName()),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(jar, c.GetSessionCookieName(), auth.CookieOptions(c), auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	repo, err := apirepo.New(client, c.GetSessionCookieName())
	if err != nil {
		return nil, err
	}

	uploads, err := upload.NewService(client, upload.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	session := sessions.NewStore(sessions.WithLogger(logger))
	session.Subscribe(func(s sessions.State) {
		logger.Debug().
			Bool("authenticated", s.Business != nil).
			Int("outlets", len(s.Outlets)).
			Msg("session changed")
	})

	return &app{
		cfg:     c,
		logger:  logger,
		jar:     jar,
		client:  client,
		tokens:  tokens,
		session: session,
		ui:      ui.NewStore(),
		repo:    repo,
		uploads: uploads,
	}, nil
}

// newJar keeps cookies in Redis when an address is configured and in the
// cookie file otherwise.
func newJar(c config.CookieConfig, logger zerolog.Logger) (cookies.Store, error) {
	if addr := c.GetCookieRedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return cookies.NewRedisJar(client,
			[]cookies.RedisJarOption{cookies.WithKeyPrefix(c.GetCookieRedisPrefix())},
			cookies.WithLogger(logger),
		)
	}
	return cookies.NewFileJar(c.GetCookieFile(), cookies.WithLogger(logger))
}

// restore rehydrates the session store and reapplies the remembered outlet.
func (a *app) restore(ctx context.Context) (bootstrap.Outcome, error) {
	b, err := bootstrap.New(a.tokens, a.session,
		bootstrap.WithLoader(a.repo),
		bootstrap.WithUIStore(a.ui),
		bootstrap.WithLogger(a.logger),
	)
	if err != nil {
		return bootstrap.Outcome{}, err
	}

	outcome, err := b.Run(ctx)
	if err != nil || outcome.Route != bootstrap.RouteDashboard {
		return outcome, err
	}

	if id, ok := cookies.Get[business.OutletID](a.jar, selectedOutletCookie); ok {
		if err := a.session.SelectOutlet(id); err != nil && !apperrors.Is(err, apperrors.ErrOutletNotFound) {
			return outcome, err
		}
	}
	return outcome, nil
}

func (a *app) status(ctx context.Context) error {
	outcome, err := a.restore(ctx)
	if err != nil {
		return err
	}

	if outcome.SessionExpired {
		fmt.Println("Your session has expired.")
	}
	fmt.Printf("Route: %s\n", outcome.Route)
	if outcome.Route != bootstrap.RouteDashboard {
		return nil
	}

	if b := a.session.Business(); b != nil {
		fmt.Printf("Business: %s (%s, %s)\n", b.Name, b.Status, utils.ValueOr(b.Currency, "no currency"))
	}
	if selected := a.session.SelectedOutlet(); selected != nil {
		fmt.Printf("Outlet: %s\n", selected.Outlet.Name)
	} else {
		fmt.Println("Outlet: none selected")
	}
	return nil
}

func (a *app) signIn(ctx context.Context) error {
	email, err := (&promptui.Prompt{
		Label: "Email",
		Validate: func(s string) error {
			if !strings.Contains(s, "@") {
				return errors.New("enter an email address")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return err
	}

	password, err := (&promptui.Prompt{Label: "Password", Mask: '*'}).Run()
	if err != nil {
		return err
	}

	signIn, err := auth.NewPasswordSignIn(a.client, a.tokens, auth.WithSignInLogger(a.logger))
	if err != nil {
		return err
	}

	a.ui.BeginLoading()
	_, err = signIn.SignIn(ctx, email, password)
	a.ui.EndLoading()
	if err != nil {
		var appErr *apiclient.ApplicationError
		if apperrors.As(err, &appErr) {
			fmt.Println(appErr.Message)
			return nil
		}
		return err
	}

	a.ui.SetSuccessModalOpen(true)
	fmt.Println("Signed in.")
	return a.status(ctx)
}

func (a *app) singleSignOn(ctx context.Context) error {
	provider, err := auth.DiscoverIdentityProvider(ctx, a.cfg, a.tokens, auth.WithProviderLogger(a.logger))
	if err != nil {
		return err
	}

	redirect, err := url.Parse(a.cfg.GetOIDCRedirectURL())
	if err != nil {
		return err
	}

	req, err := provider.Begin(string(bootstrap.RouteDashboard))
	if err != nil {
		return err
	}
	fmt.Printf("Open this address to sign in:\n\n  %s\n\n", req.URL)

	type callback struct {
		identity auth.Identity
		err      error
	}
	done := make(chan callback, 1)
	// Only the first callback counts.
	deliver := func(cb callback) {
		select {
		case done <- cb:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if e := r.FormValue("error"); e != "" {
			http.Error(w, "Sign in failed", http.StatusBadRequest)
			deliver(callback{err: fmt.Errorf("identity provider: %s %s", e, r.FormValue("error_description"))})
			return
		}
		identity, err := provider.Complete(r.Context(), r.FormValue("state"), r.FormValue("code"))
		if err != nil {
			http.Error(w, "Sign in failed", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in. You can close this window.")
		}
		deliver(callback{identity: identity, err: err})
	})

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen for the callback: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.logger.Error().Err(err).Msg("callback server failed")
		}
	}()
	defer shutdown(server)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case cb := <-done:
		if cb.err != nil {
			return cb.err
		}
		fmt.Printf("Signed in as %s.\n", cb.identity.Email)
		return a.status(ctx)
	}
}

func (a *app) chooseOutlet(ctx context.Context) error {
	outcome, err := a.restore(ctx)
	if err != nil {
		return err
	}
	if outcome.Route != bootstrap.RouteDashboard {
		fmt.Println("Sign in first.")
		return nil
	}

	outlets := a.session.Outlets()
	if len(outlets) == 0 {
		fmt.Println("This business has no outlets.")
		return nil
	}

	names := make([]string, len(outlets))
	cursor := 0
	current, hasCurrent := a.session.SelectedOutletID()
	for i, o := range outlets {
		names[i] = o.Name
		if o.IsPrimary {
			names[i] += " (primary)"
		}
		if hasCurrent && o.ID == current {
			cursor = i
		}
	}

	idx, _, err := (&promptui.Select{
		Label:     "Outlet",
		Items:     names,
		CursorPos: cursor,
	}).Run()
	if err != nil {
		return err
	}

	if err := a.session.SelectOutlet(outlets[idx].ID); err != nil {
		return err
	}
	if err := cookies.Set(a.jar, selectedOutletCookie, outlets[idx].ID, auth.CookieOptions(a.cfg)); err != nil {
		return err
	}
	fmt.Printf("Working in %s.\n", outlets[idx].Name)
	return nil
}

func (a *app) upload(ctx context.Context, path string) error {
	var asset upload.Asset
	err := a.ui.Track(func() error {
		var err error
		asset, err = a.uploads.UploadFile(ctx, path, a.cfg.GetSessionCookieName())
		return err
	})
	if err != nil {
		return err
	}
	fmt.Printf("url:   %s\nphash: %s\n", asset.URL, asset.PHash)
	return nil
}

func (a *app) signOut() error {
	if err := auth.SignOut(a.tokens, a.session); err != nil {
		return err
	}
	if err := cookies.Remove(a.jar, selectedOutletCookie); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
