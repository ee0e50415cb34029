// Package cache decorates a record store with a Redis read-through cache for
// lookups by id.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"channelling/internal/lifecycle"
	"channelling/pkg/platform/circuit"
)

// Client is the subset of redis.Cmdable the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// evicted marks a key whose record was just written. Fills use SETNX, so a
// reader that loaded the previous version before the write cannot put it back
// while the marker lives.
const evicted = "evicted"

// Store serves FindByID from Redis and falls back to the wrapped store on a
// miss. Writes go to the wrapped store and replace the cached entry with an
// eviction marker for the hold period. Redis errors never fail a request; they
// are logged and the wrapped store answers.
//
// A circuit breaker stops cache reads while Redis keeps failing. Evictions are
// always attempted so a recovering Redis never serves a superseded version.
type Store[T lifecycle.Record] struct {
	next    lifecycle.Store[T]
	client  Client
	desc    lifecycle.Descriptor[T]
	ttl     time.Duration
	hold    time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ttl     time.Duration
	hold    time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

// WithTTL sets how long an entry lives. Default 5 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEvictionHold sets how long a written key refuses fills. It must outlast
// the slowest store read. Default 5 seconds.
func WithEvictionHold(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.hold = d
		}
	}
}

// WithBreaker shares one breaker between the caches of several kinds, so they
// trip together when Redis goes away.
func WithBreaker(b *circuit.Breaker) Option {
	return func(o *options) {
		o.breaker = b
	}
}

// New wraps next.
func New[T lifecycle.Record](next lifecycle.Store[T], client Client, desc lifecycle.Descriptor[T], opts ...Option) *Store[T] {
	o := options{ttl: 5 * time.Minute, hold: 5 * time.Second, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.breaker == nil {
		o.breaker = circuit.New("redis")
	}
	return &Store[T]{next: next, client: client, desc: desc, ttl: o.ttl, hold: o.hold, logger: o.logger, breaker: o.breaker}
}

// Key returns the cache key of one record.
func Key(kind string, id int64) string {
	return fmt.Sprintf("channelling:record:%s:%d", kind, id)
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (T, error) {
	key := Key(s.desc.Name, id)
	fill := s.breaker.Allow()
	if fill {
		raw, err := s.client.Get(ctx, key).Result()
		switch {
		case err == nil && raw == evicted:
			s.record(ctx, nil)
			fill = false
		case err == nil:
			s.record(ctx, nil)
			rec := s.desc.New()
			if jsonErr := json.Unmarshal([]byte(raw), rec); jsonErr == nil {
				return rec, nil
			}
			s.evict(ctx, key)
			fill = false
		case errors.Is(err, redis.Nil):
			s.record(ctx, nil)
		default:
			s.record(ctx, err)
			s.logger.WarnContext(ctx, "record cache read failed", "key", key, "error", err)
			fill = false
		}
	}

	rec, err := s.next.FindByID(ctx, id)
	if err != nil || !fill {
		return rec, err
	}
	if payload, err := json.Marshal(rec); err == nil {
		// SETNX leaves a marker written after the Get above in place
		err = s.client.SetNX(ctx, key, payload, s.ttl).Err()
		s.record(ctx, err)
		if err != nil {
			s.logger.WarnContext(ctx, "record cache write failed", "key", key, "error", err)
		}
	}
	return rec, nil
}

// Primary returns the wrapped store.
func (s *Store[T]) Primary() lifecycle.Store[T] {
	return s.next
}

func (s *Store[T]) FindAll(ctx context.Context) ([]T, error) {
	return s.next.FindAll(ctx)
}

func (s *Store[T]) FindWhere(ctx context.Context, filter lifecycle.Filter) ([]T, error) {
	return s.next.FindWhere(ctx, filter)
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	return s.next.Insert(ctx, rec)
}

// Update evicts even when the write fails: a conflict means the cached copy may
// be the outdated one. The version check itself never sees the cache because
// the lifecycle manager loads through Primary.
func (s *Store[T]) Update(ctx context.Context, rec T, expectedVersion int64) (T, error) {
	id := rec.Meta().ID
	out, err := s.next.Update(ctx, rec, expectedVersion)
	s.evict(ctx, Key(s.desc.Name, id))
	return out, err
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	err := s.next.Delete(ctx, id)
	s.evict(ctx, Key(s.desc.Name, id))
	return err
}

func (s *Store[T]) evict(ctx context.Context, key string) {
	err := s.client.Set(ctx, key, evicted, s.hold).Err()
	s.record(ctx, err)
	if err != nil {
		s.logger.WarnContext(ctx, "record cache evict failed", "key", key, "error", err)
	}
}

func (s *Store[T]) record(ctx context.Context, err error) {
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "record cache recovered", "breaker", s.breaker.Name())
		}
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "record cache disabled after repeated failures", "breaker", s.breaker.Name())
	}
}
