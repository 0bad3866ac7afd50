package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	flog "finclient/internal/log"
)

// DefaultTTL is how long a cached result is served without a fetch.
const DefaultTTL = 5 * time.Minute

var (
	// ErrSuperseded is returned by a fetch whose result was overtaken by a
	// newer request for the same key. Its data is never stored.
	ErrSuperseded = errors.New("result superseded by a newer request")

	ErrMissingUser = errors.New("cache key requires a user id")
)

// FetchFunc produces a fresh result when the cache cannot serve one.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Envelope is the persisted form of a cached result.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
}

// Time returns the moment the envelope was written.
func (e Envelope) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Result is a value returned by the cache along with where it came from.
type Result[T any] struct {
	Data      T
	FetchedAt time.Time
	FromCache bool
}

// ResultCacheConfig configures a ResultCache.
type ResultCacheConfig struct {
	// Prefix namespaces keys in the store, e.g. "recurring".
	Prefix string
	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// ResultCache keeps one fetched result per user in a Store. Each fetch takes
// a request token; only the latest token issued for a key may write it, so
// an older response finishing late cannot overwrite a newer one.
type ResultCache[T any] struct {
	store  Store
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

func NewResultCache[T any](store Store, cfg ResultCacheConfig) *ResultCache[T] {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "result"
	}
	return &ResultCache[T]{
		store:  store,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		logger: cfg.Logger.With(flog.FieldComponent, flog.ComponentCache, "prefix", cfg.Prefix),
		latest: make(map[string]uint64),
	}
}

// Key returns the store key of a user's slot.
func (c *ResultCache[T]) Key(userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingUser
	}
	return c.prefix + ":" + userID, nil
}

// LoadOrFetch serves the user's cached result while it is younger than the
// TTL. Otherwise it fetches, stores the result with the current time and
// returns it. A failed fetch leaves the slot untouched.
func (c *ResultCache[T]) LoadOrFetch(ctx context.Context, userID string, fetch FetchFunc[T]) (Result[T], error) {
	key, err := c.Key(userID)
	if err != nil {
		return Result[T]{}, err
	}

	if env, ok := c.read(ctx, key); ok {
		age := c.now().Sub(env.Time())
		if age >= 0 && age < c.ttl {
			var data T
			if err := json.Unmarshal(env.Data, &data); err == nil {
				c.logger.DebugContext(ctx, "Serving cached result", flog.FieldCacheKey, key, "age", age.Round(time.Second))
				return Result[T]{Data: data, FetchedAt: env.Time(), FromCache: true}, nil
			}
			c.logger.WarnContext(ctx, "Cached payload unreadable, refetching", flog.FieldCacheKey, key)
		}
	}

	return c.fetchAndStore(ctx, key, fetch)
}

// ForceRefresh fetches regardless of the cached entry's age and, on success,
// replaces the entry with the new result and timestamp. On failure the old
// entry stays as it was.
func (c *ResultCache[T]) ForceRefresh(ctx context.Context, userID string, fetch FetchFunc[T]) (Result[T], error) {
	key, err := c.Key(userID)
	if err != nil {
		return Result[T]{}, err
	}
	return c.fetchAndStore(ctx, key, fetch)
}

// Invalidate drops the user's slot, e.g. after a mutation or on logout.
func (c *ResultCache[T]) Invalidate(ctx context.Context, userID string) error {
	key, err := c.Key(userID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	// Outstanding fetches must not resurrect the slot.
	c.seq++
	c.latest[key] = c.seq
	c.mu.Unlock()

	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (c *ResultCache[T]) fetchAndStore(ctx context.Context, key string, fetch FetchFunc[T]) (Result[T], error) {
	token := c.issue(key)

	data, err := fetch(ctx)
	if err != nil {
		return Result[T]{}, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return Result[T]{}, fmt.Errorf("marshal cache payload: %w", err)
	}
	now := c.now()
	env, err := json.Marshal(Envelope{Data: payload, Timestamp: now.UnixMilli()})
	if err != nil {
		return Result[T]{}, fmt.Errorf("marshal cache envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest[key] != token {
		c.logger.InfoContext(ctx, "Discarding superseded result", flog.FieldCacheKey, key, "token", token, "latest", c.latest[key])
		return Result[T]{}, ErrSuperseded
	}
	if err := c.store.Set(ctx, key, string(env)); err != nil {
		// Persist failures do not fail the cycle.
		c.logger.WarnContext(ctx, "Failed to persist cache entry", flog.FieldCacheKey, key, "error", err)
	}

	return Result[T]{Data: data, FetchedAt: now}, nil
}

func (c *ResultCache[T]) issue(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.latest[key] = c.seq
	return c.seq
}

func (c *ResultCache[T]) read(ctx context.Context, key string) (Envelope, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read cache entry", flog.FieldCacheKey, key, "error", err)
		return Envelope{}, false
	}
	if !ok {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Timestamp == 0 {
		c.logger.WarnContext(ctx, "Ignoring malformed cache entry", flog.FieldCacheKey, key)
		return Envelope{}, false
	}
	return env, true
}
