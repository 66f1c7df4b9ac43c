// Package cookies is the durable key/value layer of the console. Values are
// stored as strings; structured values round-trip through JSON.
package cookies

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/bountip-console/internal/errors"
)

const minutesPerDay = 24 * 60

// Options controls how an entry is persisted. A zero ExpiresInMinutes makes a
// session entry that never expires on its own.
type Options struct {
	ExpiresInMinutes int
	Domain           string
	Path             string
	Secure           bool
	SameSite         http.SameSite
}

// Entry is a stored cookie.
type Entry struct {
	Name     string
	Value    string
	Expires  time.Time
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Expired reports whether the entry has passed its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// HTTPCookie converts the entry into a net/http cookie.
func (e Entry) HTTPCookie() *http.Cookie {
	return &http.Cookie{
		Name:     e.Name,
		Value:    e.Value,
		Expires:  e.Expires,
		Domain:   e.Domain,
		Path:     e.Path,
		Secure:   e.Secure,
		SameSite: e.SameSite,
	}
}

// Store is the persistence primitive behind Get, Set and Remove.
type Store interface {
	Lookup(name string) (Entry, bool)
	Put(name, value string, opts Options) error
	Delete(name string) error
}

// ExpiryDays converts minutes into the day-fraction units used for expiry.
func ExpiryDays(minutes int) float64 {
	return float64(minutes) / minutesPerDay
}

func expiresAt(now time.Time, days float64) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(math.Round(days * float64(24*time.Hour))))
}

func newEntry(name, value string, opts Options, now time.Time) (Entry, error) {
	if strings.TrimSpace(name) == "" {
		return Entry{}, errors.ErrEmptyCookieName
	}
	path := opts.Path
	if path == "" {
		path = "/"
	}
	sameSite := opts.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	return Entry{
		Name:     name,
		Value:    value,
		Expires:  expiresAt(now, ExpiryDays(opts.ExpiresInMinutes)),
		Domain:   opts.Domain,
		Path:     path,
		Secure:   opts.Secure,
		SameSite: sameSite,
	}, nil
}

// ParseSameSite maps lax, strict and none onto http.SameSite, defaulting to lax.
func ParseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Set stores value under key. Strings and byte slices are stored verbatim,
// everything else is encoded as JSON first.
func Set(s Store, key string, value any, opts Options) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case json.RawMessage:
		raw = string(v)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode cookie %s: %w", key, err)
		}
		raw = string(b)
	}
	return s.Put(key, raw, opts)
}

// Value is the raw text of a stored entry.
type Value struct {
	Raw string
}

func (v Value) String() string {
	return v.Raw
}

// Decode parses the raw text as JSON into out.
func (v Value) Decode(out any) error {
	return json.Unmarshal([]byte(v.Raw), out)
}

// GetValue returns the raw stored value. Absent and expired entries report false.
func GetValue(s Store, key string) (Value, bool) {
	e, ok := s.Lookup(key)
	if !ok {
		return Value{}, false
	}
	return Value{Raw: e.Value}, true
}

// Get decodes the entry under key into T. When the stored text is not JSON the
// raw string is returned for string and any targets; other targets get their
// zero value with ok still true, since the entry exists.
func Get[T any](s Store, key string) (T, bool) {
	var out T
	v, ok := GetValue(s, key)
	if !ok {
		return out, false
	}
	if err := v.Decode(&out); err != nil {
		var fallback T
		switch p := any(&fallback).(type) {
		case *string:
			*p = v.Raw
		case *any:
			*p = v.Raw
		}
		return fallback, true
	}
	return out, true
}

// Remove deletes key. Removing an absent key is not an error.
func Remove(s Store, key string) error {
	return s.Delete(key)
}

type jarSettings struct {
	nowTime func() time.Time
	logger  zerolog.Logger
}

// JarOption configures a MemoryJar or FileJar.
type JarOption func(*jarSettings)

// WithNowTime sets the clock used for expiry (primarily for testing)
func WithNowTime(nowFunc func() time.Time) JarOption {
	return func(s *jarSettings) {
		s.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) JarOption {
	return func(s *jarSettings) {
		s.logger = logger
	}
}

func newJarSettings(opts []JarOption) jarSettings {
	s := jarSettings{
		nowTime: time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
