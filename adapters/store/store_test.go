package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/teller/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseAttemptStore(t *testing.T, s ports.AttemptStore) {
	ctx := context.Background()

	n, err := s.Failures(ctx, "4111")
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := 1; want <= 3; want++ {
		n, err = s.RecordFailure(ctx, "4111", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err = s.Failures(ctx, "4111")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Failures(ctx, "5500")
	require.NoError(t, err)
	assert.Zero(t, n, "cards are counted independently")

	require.NoError(t, s.Clear(ctx, "4111"))
	n, err = s.Failures(ctx, "4111")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Clear(ctx, "never-seen"))
}

func TestMemoryStore(t *testing.T) {
	exerciseAttemptStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newMemoryStore(func() time.Time { return now })

	_, err := s.RecordFailure(ctx, "4111", time.Minute)
	require.NoError(t, err)
	_, err = s.RecordFailure(ctx, "4111", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	n, err := s.Failures(ctx, "4111")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.RecordFailure(ctx, "4111", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "expired counter restarts")
}

func newRedisStore(t *testing.T) (*miniredis.Miniredis, ports.AttemptStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client)
}

func TestRedisStore(t *testing.T) {
	_, s := newRedisStore(t)
	exerciseAttemptStore(t, s)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, s := newRedisStore(t)

	_, err := s.RecordFailure(ctx, "4111", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("teller:pin_attempts:4111"))

	mr.FastForward(2 * time.Minute)

	n, err := s.Failures(ctx, "4111")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, s := newRedisStore(t)
	mr.Close()

	_, err := s.RecordFailure(context.Background(), "4111", time.Minute)
	assert.Error(t, err)
	_, err = s.Failures(context.Background(), "4111")
	assert.Error(t, err)
}
