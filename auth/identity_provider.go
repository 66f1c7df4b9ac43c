package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/bountip-console/auth/flows"
	"github.com/jrsteele09/bountip-console/internal/config"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
)

const defaultFlowTimeout = 10 * time.Minute

// AuthRequest is where to send the user to sign in with the identity provider.
type AuthRequest struct {
	URL   string
	State string
}

// Identity is the signed-in user as described by the verified ID token.
type Identity struct {
	Subject     string
	Email       string
	Name        string
	Tokens      sessions.TokenPair
	ReturnRoute string
}

// IdentityProvider signs in through an OpenID Connect provider using the
// authorization code flow with PKCE.
type IdentityProvider struct {
	oauth       *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	tokens      *Tokens
	flows       flows.Repo
	flowTimeout time.Duration
	nowTime     func() time.Time
	logger      zerolog.Logger
}

// IdentityProviderOption defines a function type to modify the IdentityProvider instance.
type IdentityProviderOption func(*IdentityProvider)

func WithFlowRepo(repo flows.Repo) IdentityProviderOption {
	return func(p *IdentityProvider) {
		p.flows = repo
	}
}

// WithFlowTimeout bounds how long a started sign-in may wait for its callback.
func WithFlowTimeout(d time.Duration) IdentityProviderOption {
	return func(p *IdentityProvider) {
		p.flowTimeout = d
	}
}

func WithProviderNowTime(nowFunc func() time.Time) IdentityProviderOption {
	return func(p *IdentityProvider) {
		p.nowTime = nowFunc
	}
}

func WithProviderLogger(logger zerolog.Logger) IdentityProviderOption {
	return func(p *IdentityProvider) {
		p.logger = logger
	}
}

func NewIdentityProvider(
	oauthConfig *oauth2.Config,
	verifier *oidc.IDTokenVerifier,
	tokens *Tokens,
	options ...IdentityProviderOption,
) (*IdentityProvider, error) {
	if oauthConfig == nil {
		return nil, errors.New("[NewIdentityProvider] oauth config is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewIdentityProvider] verifier is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewIdentityProvider] tokens is required")
	}

	p := &IdentityProvider{
		oauth:       oauthConfig,
		verifier:    verifier,
		tokens:      tokens,
		flows:       flows.NewInMemoryRepo(),
		flowTimeout: defaultFlowTimeout,
		nowTime:     time.Now,
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// DiscoverIdentityProvider builds an IdentityProvider from the issuer's
// discovery document.
func DiscoverIdentityProvider(ctx context.Context, cfg config.IdentityConfig, tokens *Tokens, options ...IdentityProviderOption) (*IdentityProvider, error) {
	if cfg.GetOIDCIssuer() == "" {
		return nil, errors.New("[DiscoverIdentityProvider] issuer is required")
	}
	if err := ValidateRedirectURL(cfg.GetOIDCRedirectURL()); err != nil {
		return nil, fmt.Errorf("[DiscoverIdentityProvider] %w", err)
	}

	provider, err := oidc.NewProvider(ctx, cfg.GetOIDCIssuer())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GetOIDCClientID(),
		ClientSecret: cfg.GetOIDCClientSecret(),
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.GetOIDCRedirectURL(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess},
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GetOIDCClientID()})
	return NewIdentityProvider(oauthConfig, verifier, tokens, options...)
}

// Begin starts a sign-in and returns the provider URL to open. returnRoute
// is handed back by Complete.
func (p *IdentityProvider) Begin(returnRoute string) (AuthRequest, error) {
	now := p.nowTime()
	if err := p.flows.DeleteExpired(now.Add(-p.flowTimeout)); err != nil {
		p.logger.Warn().Err(err).Msg("failed to prune expired sign-in flows")
	}

	flow := &flows.Flow{
		State:        uuid.NewString(),
		Nonce:        uuid.NewString(),
		CodeVerifier: oauth2.GenerateVerifier(),
		ReturnRoute:  returnRoute,
		CreatedAt:    now,
	}
	if err := p.flows.Upsert(flow); err != nil {
		return AuthRequest{}, fmt.Errorf("[Begin] failed to store flow: %w", err)
	}

	url := p.oauth.AuthCodeURL(flow.State,
		oidc.Nonce(flow.Nonce),
		oauth2.S256ChallengeOption(flow.CodeVerifier),
	)
	return AuthRequest{URL: url, State: flow.State}, nil
}

// Complete finishes the sign-in started with state. It exchanges code for
// tokens, verifies the ID token and its nonce, then saves the token pair.
func (p *IdentityProvider) Complete(ctx context.Context, state, code string) (Identity, error) {
	if err := ValidateState(state); err != nil {
		return Identity{}, err
	}
	if code == "" {
		return Identity{}, fmt.Errorf("missing authorization code: %w", apperrors.ErrInvalidInput)
	}

	flow, err := p.flows.Get(state)
	if err != nil {
		return Identity{}, fmt.Errorf("[Complete] unknown state: %w", err)
	}
	// A state is good for one attempt only.
	if err := p.flows.Delete(state); err != nil {
		return Identity{}, fmt.Errorf("[Complete] failed to delete flow: %w", err)
	}
	if p.nowTime().Sub(flow.CreatedAt) > p.flowTimeout {
		return Identity{}, fmt.Errorf("[Complete] sign-in took too long: %w", apperrors.ErrSessionExpired)
	}

	token, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return Identity{}, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Identity{}, apperrors.ErrMissingIDToken
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, fmt.Errorf("ID token verification failed: %w", errors.Join(apperrors.ErrInvalidToken, err))
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("failed to extract claims: %w", err)
	}
	if claims.Nonce != flow.Nonce {
		return Identity{}, apperrors.ErrInvalidNonce
	}

	pair := sessions.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if err := p.tokens.Save(pair); err != nil {
		return Identity{}, err
	}

	p.logger.Info().
		Str("subject", idToken.Subject).
		Str("email", claims.Email).
		Msg("signed in with identity provider")

	return Identity{
		Subject:     idToken.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		Tokens:      pair,
		ReturnRoute: flow.ReturnRoute,
	}, nil
}
