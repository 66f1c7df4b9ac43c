// Package auth signs the console user in and out. It owns the token pair
// persisted in the session cookie; the business context lives in sessions.
package auth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/cookies"
	"github.com/jrsteele09/bountip-console/internal/config"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
)

// Cookie names holding the merchant and admin token pairs.
const (
	DefaultSessionCookie = "bountipLoginUserTokens"
	AdminSessionCookie   = "bountipAdminUserTokens"
)

// Tokens reads and writes one token pair cookie.
type Tokens struct {
	store      cookies.Store
	cookieName string
	options    cookies.Options
	nowTime    func() time.Time
	logger     zerolog.Logger
}

// TokensOption defines a function type to modify the Tokens instance.
type TokensOption func(*Tokens)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) TokensOption {
	return func(t *Tokens) {
		t.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) TokensOption {
	return func(t *Tokens) {
		t.logger = logger
	}
}

// NewTokens manages the pair stored under cookieName. options supplies the
// cookie attributes; its ExpiresInMinutes is used when the access token has
// no exp claim.
func NewTokens(store cookies.Store, cookieName string, options cookies.Options, opts ...TokensOption) (*Tokens, error) {
	if store == nil {
		return nil, errors.New("[NewTokens] cookie store is required")
	}
	if cookieName == "" {
		return nil, errors.New("[NewTokens] cookie name is required")
	}

	t := &Tokens{
		store:      store,
		cookieName: cookieName,
		options:    options,
		nowTime:    time.Now,
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// CookieOptions builds cookie attributes from configuration.
func CookieOptions(cfg config.CookieConfig) cookies.Options {
	return cookies.Options{
		ExpiresInMinutes: cfg.GetCookieExpiryMinutes(),
		Domain:           cfg.GetCookieDomain(),
		Path:             "/",
		Secure:           cfg.GetCookieSecure(),
		SameSite:         cookies.ParseSameSite(cfg.GetCookieSameSite()),
	}
}

func (t *Tokens) CookieName() string {
	return t.cookieName
}

// Save persists pair. The cookie lives until the access token's exp claim
// when there is one.
func (t *Tokens) Save(pair sessions.TokenPair) error {
	if !pair.Valid() {
		return apperrors.ErrInvalidTokenSet
	}

	opts := t.options
	if exp, ok := ExpiresAt(pair.AccessToken); ok {
		remaining := exp.Sub(t.nowTime())
		if remaining <= 0 {
			return fmt.Errorf("access token expired at %s: %w", exp.Format(time.RFC3339), apperrors.ErrSessionExpired)
		}
		opts.ExpiresInMinutes = int(math.Ceil(remaining.Minutes()))
	}

	if err := cookies.Set(t.store, t.cookieName, pair, opts); err != nil {
		return fmt.Errorf("failed to save %s: %w", t.cookieName, err)
	}
	t.logger.Debug().
		Str("cookie", t.cookieName).
		Int("expiresInMinutes", opts.ExpiresInMinutes).
		Msg("token pair saved")
	return nil
}

// Load returns the stored pair. ok is false when there is no cookie or it
// carries no access token.
func (t *Tokens) Load() (sessions.TokenPair, bool) {
	pair, ok := cookies.Get[sessions.TokenPair](t.store, t.cookieName)
	if !ok || !pair.Valid() {
		return sessions.TokenPair{}, false
	}
	return pair, true
}

func (t *Tokens) Clear() error {
	if err := cookies.Remove(t.store, t.cookieName); err != nil {
		return fmt.Errorf("failed to clear %s: %w", t.cookieName, err)
	}
	return nil
}

// ExpiresAt reads the exp claim of a JWT access token without verifying its
// signature. Opaque tokens report false.
func ExpiresAt(accessToken string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
