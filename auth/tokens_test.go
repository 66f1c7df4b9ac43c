package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/bountip-console/auth"
	"github.com/jrsteele09/bountip-console/business"
	"github.com/jrsteele09/bountip-console/cookies"
	"github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

func signedAccessToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTokens(t *testing.T) (*auth.Tokens, *cookies.MemoryJar) {
	t.Helper()
	jar := cookies.NewMemoryJar(cookies.WithNowTime(nowFunc))
	tokens, err := auth.NewTokens(jar, auth.DefaultSessionCookie, cookies.Options{ExpiresInMinutes: 60}, auth.WithNowTime(nowFunc))
	require.NoError(t, err)
	return tokens, jar
}

func TestNewTokens_RequiresDependencies(t *testing.T) {
	_, err := auth.NewTokens(nil, auth.DefaultSessionCookie, cookies.Options{})
	require.Error(t, err)

	_, err = auth.NewTokens(cookies.NewMemoryJar(), "", cookies.Options{})
	require.Error(t, err)
}

func TestTokens_SaveAndLoad(t *testing.T) {
	t.Run("opaque token uses configured expiry", func(t *testing.T) {
		tokens, jar := newTokens(t)
		pair := sessions.TokenPair{AccessToken: "abc", RefreshToken: "xyz"}
		require.NoError(t, tokens.Save(pair))

		got, ok := tokens.Load()
		require.True(t, ok)
		require.Equal(t, pair, got)

		entry, ok := jar.Lookup(auth.DefaultSessionCookie)
		require.True(t, ok)
		require.Equal(t, fixedNow.Add(time.Hour), entry.Expires)
		require.JSONEq(t, `{"accessToken":"abc","refreshToken":"xyz"}`, entry.Value)
	})

	t.Run("jwt exp drives cookie expiry", func(t *testing.T) {
		tokens, jar := newTokens(t)
		access := signedAccessToken(t, fixedNow.Add(90*time.Minute))
		require.NoError(t, tokens.Save(sessions.TokenPair{AccessToken: access, RefreshToken: "xyz"}))

		entry, ok := jar.Lookup(auth.DefaultSessionCookie)
		require.True(t, ok)
		require.Equal(t, fixedNow.Add(90*time.Minute), entry.Expires)
	})

	t.Run("expired jwt is rejected", func(t *testing.T) {
		tokens, _ := newTokens(t)
		access := signedAccessToken(t, fixedNow.Add(-time.Minute))
		err := tokens.Save(sessions.TokenPair{AccessToken: access})
		require.ErrorIs(t, err, errors.ErrSessionExpired)

		_, ok := tokens.Load()
		require.False(t, ok)
	})

	t.Run("missing access token is rejected", func(t *testing.T) {
		tokens, _ := newTokens(t)
		require.ErrorIs(t, tokens.Save(sessions.TokenPair{RefreshToken: "xyz"}), errors.ErrInvalidTokenSet)
	})
}

func TestTokens_Load(t *testing.T) {
	tokens, jar := newTokens(t)

	t.Run("absent", func(t *testing.T) {
		_, ok := tokens.Load()
		require.False(t, ok)
	})

	t.Run("cookie without access token", func(t *testing.T) {
		require.NoError(t, jar.Put(auth.DefaultSessionCookie, `{"refreshToken":"xyz"}`, cookies.Options{}))
		_, ok := tokens.Load()
		require.False(t, ok)
	})

	t.Run("cookie that is not json", func(t *testing.T) {
		require.NoError(t, jar.Put(auth.DefaultSessionCookie, "garbage", cookies.Options{}))
		_, ok := tokens.Load()
		require.False(t, ok)
	})
}

func TestTokens_ScopesAreIndependent(t *testing.T) {
	jar := cookies.NewMemoryJar()
	merchant, err := auth.NewTokens(jar, auth.DefaultSessionCookie, cookies.Options{})
	require.NoError(t, err)
	admin, err := auth.NewTokens(jar, auth.AdminSessionCookie, cookies.Options{})
	require.NoError(t, err)

	require.NoError(t, merchant.Save(sessions.TokenPair{AccessToken: "merchant"}))
	require.NoError(t, admin.Save(sessions.TokenPair{AccessToken: "admin"}))
	require.NoError(t, admin.Clear())

	got, ok := merchant.Load()
	require.True(t, ok)
	require.Equal(t, "merchant", got.AccessToken)
	_, ok = admin.Load()
	require.False(t, ok)
}

func TestExpiresAt(t *testing.T) {
	exp := fixedNow.Add(time.Hour)
	got, ok := auth.ExpiresAt(signedAccessToken(t, exp))
	require.True(t, ok)
	require.True(t, exp.Equal(got))

	_, ok = auth.ExpiresAt("not-a-jwt")
	require.False(t, ok)
}

func TestSignOut(t *testing.T) {
	tokens, _ := newTokens(t)
	store := sessions.NewStore()
	require.NoError(t, tokens.Save(sessions.TokenPair{AccessToken: "abc"}))
	require.NoError(t, store.SignIn(&business.Business{ID: "biz-1"}, []business.OutletAccess{{Outlet: business.Outlet{ID: 1}}}))

	require.NoError(t, auth.SignOut(tokens, store))

	_, ok := tokens.Load()
	require.False(t, ok)
	require.False(t, store.IsAuthenticated())
	require.Nil(t, store.SelectedOutlet())
}
