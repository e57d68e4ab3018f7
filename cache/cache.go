package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Anthony-donbosco/aureum-go/kvstore"
)

// Envelope is the persisted wrapper for a cached payload. Timestamp is epoch
// milliseconds at write time.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Option mutates a [Cache] during construction.
type Option func(*Cache)

// WithLogger sets the structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Cache) { c.log = log }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is a TTL-boxed payload cache bound to one domain: a key prefix and a
// single fixed TTL shared by every key under it.
type Cache struct {
	store  kvstore.Store
	prefix string
	ttl    time.Duration
	now    func() time.Time
	log    logrus.FieldLogger
}

// New builds a [Cache] over store. prefix namespaces the domain's keys
// ("empleado", "empresa", ...); ttl is the domain freshness window.
func New(store kvstore.Store, prefix string, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
		log:    discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c *Cache) key(k string) string {
	return c.prefix + "_" + k
}

// TTL returns the domain freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached payload for key when a fresh envelope exists. A
// stale envelope is deleted and reported as a miss. Store and decode failures
// are logged and reported as misses: the cache never turns a fallback read
// into a new error.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			c.log.WithField("key", key).WithError(err).Warn("cache read failed")
		}
		return nil, false
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		c.log.WithField("key", key).WithError(err).Warn("cache entry corrupt, dropping")
		_ = c.store.Remove(ctx, c.key(key))
		return nil, false
	}

	age := c.now().UnixMilli() - env.Timestamp
	if age < 0 || time.Duration(age)*time.Millisecond >= c.ttl {
		_ = c.store.Remove(ctx, c.key(key))
		return nil, false
	}
	return env.Data, true
}

// Set overwrites key with v wrapped in a fresh envelope.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	env, err := json.Marshal(Envelope{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(key), string(env))
}

// Invalidate deletes the given keys. The manual escape hatch behind every
// domain's RefreshData, and the automatic follow-up to successful mutations.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.store.RemoveMany(ctx, prefixed...)
}
