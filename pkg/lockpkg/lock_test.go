package lockpkg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { client.Close() })

	return New(client, Options{Expiry: time.Minute, Tries: 1, RetryDelay: time.Millisecond}), mr
}

func TestWithLock(t *testing.T) {
	t.Parallel()

	locker, mr := newTestLocker(t)

	var called bool

	err := locker.WithLock(context.Background(), "recurring:process", func(ctx context.Context) error {
		called = true

		require.True(t, mr.Exists("recurring:process"), "lock key must exist while fn runs")

		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
	require.False(t, mr.Exists("recurring:process"), "lock key must be released")
}

func TestWithLockHeld(t *testing.T) {
	t.Parallel()

	locker, mr := newTestLocker(t)

	require.NoError(t, mr.Set("recurring:process", "other-process"))

	err := locker.WithLock(context.Background(), "recurring:process", func(ctx context.Context) error {
		t.Fatal("fn must not run while the lock is held elsewhere")
		return nil
	})
	require.ErrorIs(t, err, ErrNotAcquired)
}

func TestWithLockPropagatesError(t *testing.T) {
	t.Parallel()

	locker, mr := newTestLocker(t)
	errJob := errors.New("job failed")

	err := locker.WithLock(context.Background(), "recurring:process", func(ctx context.Context) error {
		return errJob
	})
	require.ErrorIs(t, err, errJob)
	require.False(t, mr.Exists("recurring:process"))
}
