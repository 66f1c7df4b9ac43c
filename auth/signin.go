package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/apiclient"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
)

var LoginPath = apiclient.APIPath("auth", "login")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordSignIn signs in with email and password against the merchant API.
type PasswordSignIn struct {
	client *apiclient.Client
	tokens *Tokens
	logger zerolog.Logger
}

// PasswordSignInOption defines a function type to modify the PasswordSignIn instance.
type PasswordSignInOption func(*PasswordSignIn)

func WithSignInLogger(logger zerolog.Logger) PasswordSignInOption {
	return func(p *PasswordSignIn) {
		p.logger = logger
	}
}

func NewPasswordSignIn(client *apiclient.Client, tokens *Tokens, options ...PasswordSignInOption) (*PasswordSignIn, error) {
	if client == nil {
		return nil, errors.New("[NewPasswordSignIn] client is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewPasswordSignIn] tokens is required")
	}

	p := &PasswordSignIn{
		client: client,
		tokens: tokens,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// SignIn exchanges credentials for a token pair and saves it. API failures
// are returned unchanged so callers can show the server's message.
func (p *PasswordSignIn) SignIn(ctx context.Context, email, password string) (sessions.TokenPair, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return sessions.TokenPair{}, err
	}

	env, err := apiclient.Post[sessions.TokenPair](ctx, p.client, LoginPath, loginRequest{
		Email:    email,
		Password: password,
	}, p.tokens.CookieName())
	if err != nil {
		p.logger.Warn().Err(err).Str("email", email).Msg("sign in failed")
		return sessions.TokenPair{}, err
	}
	if !env.HasData() || !env.Data.Valid() {
		return sessions.TokenPair{}, fmt.Errorf("[SignIn] %w", apperrors.ErrInvalidTokenSet)
	}

	if err := p.tokens.Save(*env.Data); err != nil {
		return sessions.TokenPair{}, err
	}
	p.logger.Info().Str("email", email).Msg("signed in")
	return *env.Data, nil
}

// SignOut clears the stored token pair and resets the business context.
func SignOut(tokens *Tokens, store *sessions.Store) error {
	if store != nil {
		store.SignOut()
	}
	if tokens == nil {
		return nil
	}
	return tokens.Clear()
}
