package cookies_test

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jrsteele09/bountip-console/cookies"
	"github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/stretchr/testify/require"
)

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
}

// jarFactories runs every behavioural test against each backend.
func jarFactories(t *testing.T) map[string]func(c *clock) cookies.Store {
	t.Helper()
	return map[string]func(c *clock) cookies.Store{
		"memory": func(c *clock) cookies.Store {
			return cookies.NewMemoryJar(cookies.WithNowTime(c.Now))
		},
		"file": func(c *clock) cookies.Store {
			jar, err := cookies.NewFileJar(filepath.Join(t.TempDir(), "jar", "cookies.toml"), cookies.WithNowTime(c.Now))
			require.NoError(t, err)
			return jar
		},
		"redis": func(c *clock) cookies.Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			jar, err := cookies.NewRedisJar(client, nil, cookies.WithNowTime(c.Now))
			require.NoError(t, err)
			return jar
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, newJar := range jarFactories(t) {
		t.Run(name, func(t *testing.T) {
			jar := newJar(newClock())

			t.Run("structured value", func(t *testing.T) {
				want := tokenPair{AccessToken: "abc", RefreshToken: "xyz"}
				require.NoError(t, cookies.Set(jar, "bountipLoginUserTokens", want, cookies.Options{}))

				got, ok := cookies.Get[tokenPair](jar, "bountipLoginUserTokens")
				require.True(t, ok)
				require.Equal(t, want, got)

				raw, ok := cookies.GetValue(jar, "bountipLoginUserTokens")
				require.True(t, ok)
				require.JSONEq(t, `{"accessToken":"abc","refreshToken":"xyz"}`, raw.String())
			})

			t.Run("map value", func(t *testing.T) {
				want := map[string]any{"theme": "dark", "count": float64(3)}
				require.NoError(t, cookies.Set(jar, "prefs", want, cookies.Options{}))

				got, ok := cookies.Get[map[string]any](jar, "prefs")
				require.True(t, ok)
				require.Equal(t, want, got)
			})

			t.Run("plain string falls back to raw", func(t *testing.T) {
				require.NoError(t, cookies.Set(jar, "lang", "en-GB", cookies.Options{}))

				got, ok := cookies.Get[string](jar, "lang")
				require.True(t, ok)
				require.Equal(t, "en-GB", got)

				anyGot, ok := cookies.Get[any](jar, "lang")
				require.True(t, ok)
				require.Equal(t, "en-GB", anyGot)
			})

			t.Run("undecodable value for struct target is present", func(t *testing.T) {
				require.NoError(t, cookies.Set(jar, "broken", "{not json", cookies.Options{}))

				got, ok := cookies.Get[tokenPair](jar, "broken")
				require.True(t, ok)
				require.Equal(t, tokenPair{}, got)

				raw, ok := cookies.GetValue(jar, "broken")
				require.True(t, ok)
				require.Equal(t, "{not json", raw.Raw)
			})
		})
	}
}

func TestStore_AbsentAndRemove(t *testing.T) {
	for name, newJar := range jarFactories(t) {
		t.Run(name, func(t *testing.T) {
			jar := newJar(newClock())

			_, ok := cookies.Get[tokenPair](jar, "never-set")
			require.False(t, ok)

			require.NoError(t, cookies.Remove(jar, "never-set"))

			require.NoError(t, cookies.Set(jar, "k", tokenPair{AccessToken: "a"}, cookies.Options{}))
			require.NoError(t, cookies.Remove(jar, "k"))
			_, ok = cookies.Get[tokenPair](jar, "k")
			require.False(t, ok)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	for name, newJar := range jarFactories(t) {
		t.Run(name, func(t *testing.T) {
			c := newClock()
			jar := newJar(c)

			require.NoError(t, cookies.Set(jar, "short", "v", cookies.Options{ExpiresInMinutes: 30}))
			require.NoError(t, cookies.Set(jar, "session", "v", cookies.Options{}))

			c.Advance(29 * time.Minute)
			_, ok := cookies.Get[string](jar, "short")
			require.True(t, ok)

			c.Advance(time.Minute)
			_, ok = cookies.Get[string](jar, "short")
			require.False(t, ok)

			c.Advance(365 * 24 * time.Hour)
			_, ok = cookies.Get[string](jar, "session")
			require.True(t, ok)
		})
	}
}

func TestStore_Options(t *testing.T) {
	c := newClock()
	jar := cookies.NewMemoryJar(cookies.WithNowTime(c.Now))

	require.NoError(t, jar.Put("x", "1", cookies.Options{
		ExpiresInMinutes: 60,
		Domain:           "bountip.com",
		Secure:           true,
		SameSite:         http.SameSiteStrictMode,
	}))

	e, ok := jar.Lookup("x")
	require.True(t, ok)
	require.Equal(t, c.now.Add(time.Hour), e.Expires)
	require.Equal(t, "/", e.Path)
	require.Equal(t, "bountip.com", e.Domain)
	require.True(t, e.Secure)
	require.Equal(t, http.SameSiteStrictMode, e.HTTPCookie().SameSite)

	t.Run("empty name rejected", func(t *testing.T) {
		err := jar.Put(" ", "v", cookies.Options{})
		require.ErrorIs(t, err, errors.ErrEmptyCookieName)
	})
}

func TestExpiryDays(t *testing.T) {
	require.InDelta(t, 1.0, cookies.ExpiryDays(1440), 1e-9)
	require.InDelta(t, 0.5, cookies.ExpiryDays(720), 1e-9)
	require.Zero(t, cookies.ExpiryDays(0))
}

func TestParseSameSite(t *testing.T) {
	require.Equal(t, http.SameSiteStrictMode, cookies.ParseSameSite("Strict"))
	require.Equal(t, http.SameSiteNoneMode, cookies.ParseSameSite("none"))
	require.Equal(t, http.SameSiteLaxMode, cookies.ParseSameSite(""))
}

func TestFileJar_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.toml")
	c := newClock()

	first, err := cookies.NewFileJar(path, cookies.WithNowTime(c.Now))
	require.NoError(t, err)
	require.NoError(t, cookies.Set(first, "bountipLoginUserTokens", tokenPair{AccessToken: "abc", RefreshToken: "xyz"}, cookies.Options{ExpiresInMinutes: 60}))
	require.NoError(t, cookies.Set(first, "lang", "en", cookies.Options{}))

	second, err := cookies.NewFileJar(path, cookies.WithNowTime(c.Now))
	require.NoError(t, err)

	got, ok := cookies.Get[tokenPair](second, "bountipLoginUserTokens")
	require.True(t, ok)
	require.Equal(t, tokenPair{AccessToken: "abc", RefreshToken: "xyz"}, got)
	require.Equal(t, []string{"bountipLoginUserTokens", "lang"}, second.Names())

	c.Advance(2 * time.Hour)
	require.Equal(t, []string{"lang"}, second.Names())
}

func TestNewFileJar_RequiresPath(t *testing.T) {
	_, err := cookies.NewFileJar("")
	require.Error(t, err)
}

func TestRedisJar(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := newClock()

	first, err := cookies.NewRedisJar(client, []cookies.RedisJarOption{cookies.WithKeyPrefix("test:")}, cookies.WithNowTime(c.Now))
	require.NoError(t, err)
	second, err := cookies.NewRedisJar(client, []cookies.RedisJarOption{cookies.WithKeyPrefix("test:")}, cookies.WithNowTime(c.Now))
	require.NoError(t, err)

	require.NoError(t, cookies.Set(first, "bountipLoginUserTokens", tokenPair{AccessToken: "abc"}, cookies.Options{ExpiresInMinutes: 30}))
	require.NoError(t, cookies.Set(first, "lang", "en", cookies.Options{}))

	t.Run("shared between jars", func(t *testing.T) {
		got, ok := cookies.Get[tokenPair](second, "bountipLoginUserTokens")
		require.True(t, ok)
		require.Equal(t, "abc", got.AccessToken)
	})

	t.Run("key ttl follows expiry", func(t *testing.T) {
		require.Equal(t, 30*time.Minute, mr.TTL("test:bountipLoginUserTokens"))
		require.Zero(t, mr.TTL("test:lang"))
	})

	t.Run("names", func(t *testing.T) {
		names, err := second.Names()
		require.NoError(t, err)
		require.Equal(t, []string{"bountipLoginUserTokens", "lang"}, names)
	})

	t.Run("expired by redis", func(t *testing.T) {
		mr.FastForward(31 * time.Minute)
		_, ok := second.Lookup("bountipLoginUserTokens")
		require.False(t, ok)
	})

	t.Run("client required", func(t *testing.T) {
		_, err := cookies.NewRedisJar(nil, nil)
		require.Error(t, err)
	})
}
