// Package lockpkg serializes jobs across processes with a Redis lock.
package lockpkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotAcquired is returned when another process holds the lock.
var ErrNotAcquired = errors.New("lock is held by another process")

// Options tune lock acquisition.
type Options struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultOptions suits jobs that run for up to a few minutes and should not queue up.
func DefaultOptions() Options {
	return Options{
		Expiry:     5 * time.Minute,
		Tries:      1,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Locker runs functions under a named lock.
type Locker struct {
	rs   *redsync.Redsync
	opts Options
}

// New creates a new Locker on top of a Redis client.
func New(client redis.UniversalClient, opts Options) *Locker {
	return &Locker{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
	}
}

// WithLock acquires name, runs fn and releases the lock.
func (l *Locker) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	logger := zerolog.Ctx(ctx).With().Str("lock", name).Logger()

	mutex := l.rs.NewMutex(
		name,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		logger.Warn().Err(err).Msg("lock not acquired")
		return fmt.Errorf("%w: %s", ErrNotAcquired, name)
	}

	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			logger.Error().Err(err).Bool("unlock_ok", ok).Msg("failed to release lock")
		}
	}()

	return fn(ctx)
}
