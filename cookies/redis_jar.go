package cookies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultRedisPrefix  = "bountip:cookies:"
	defaultRedisTimeout = 2 * time.Second
)

var _ Store = (*RedisJar)(nil)

// RedisJar keeps entries in Redis so several console processes share one
// session. Expiring entries carry a matching key TTL.
type RedisJar struct {
	client   *redis.Client
	prefix   string
	timeout  time.Duration
	settings jarSettings
}

// RedisJarOption configures a RedisJar beyond the common JarOptions.
type RedisJarOption func(*RedisJar)

// WithKeyPrefix namespaces the keys, default "bountip:cookies:".
func WithKeyPrefix(prefix string) RedisJarOption {
	return func(j *RedisJar) {
		j.prefix = prefix
	}
}

// WithTimeout bounds each Redis round trip.
func WithTimeout(d time.Duration) RedisJarOption {
	return func(j *RedisJar) {
		if d > 0 {
			j.timeout = d
		}
	}
}

func NewRedisJar(client *redis.Client, redisOpts []RedisJarOption, opts ...JarOption) (*RedisJar, error) {
	if client == nil {
		return nil, errors.New("[NewRedisJar] redis client is required")
	}
	j := &RedisJar{
		client:   client,
		prefix:   defaultRedisPrefix,
		timeout:  defaultRedisTimeout,
		settings: newJarSettings(opts),
	}
	for _, opt := range redisOpts {
		opt(j)
	}
	return j, nil
}

func (j *RedisJar) key(name string) string {
	return j.prefix + name
}

func (j *RedisJar) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), j.timeout)
}

func (j *RedisJar) Lookup(name string) (Entry, bool) {
	ctx, cancel := j.context()
	defer cancel()

	raw, err := j.client.Get(ctx, j.key(name)).Bytes()
	if err == redis.Nil {
		return Entry{}, false
	}
	if err != nil {
		j.settings.logger.Warn().Err(err).Str("cookie", name).Msg("redis lookup failed")
		return Entry{}, false
	}

	var rec cookieRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		j.settings.logger.Warn().Err(err).Str("cookie", name).Msg("unreadable cookie record")
		return Entry{}, false
	}
	e := rec.toEntry(name)
	if e.Expired(j.settings.nowTime()) {
		return Entry{}, false
	}
	return e, true
}

func (j *RedisJar) Put(name, value string, opts Options) error {
	now := j.settings.nowTime()
	e, err := newEntry(name, value, opts, now)
	if err != nil {
		return err
	}

	var rec cookieRecord
	rec.fromEntry(e)
	raw, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to encode cookie %s: %w", name, err)
	}

	var ttl time.Duration
	if !e.Expires.IsZero() {
		ttl = e.Expires.Sub(now)
	}

	ctx, cancel := j.context()
	defer cancel()
	if err := j.client.Set(ctx, j.key(name), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cookie %s: %w", name, err)
	}
	return nil
}

func (j *RedisJar) Delete(name string) error {
	ctx, cancel := j.context()
	defer cancel()
	if err := j.client.Del(ctx, j.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete cookie %s: %w", name, err)
	}
	return nil
}

// Names lists live entry names in sorted order.
func (j *RedisJar) Names() ([]string, error) {
	ctx, cancel := j.context()
	defer cancel()

	var names []string
	iter := j.client.Scan(ctx, 0, j.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), j.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
