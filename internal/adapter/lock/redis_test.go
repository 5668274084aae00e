package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLeaseKey = "mutualfund:nav_sync:lease"

func newRedisLease(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, testLeaseKey, ttl)
}

func TestRedis_Acquire(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLease(t, time.Minute)

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, release)

	assert.True(t, mr.Exists(testLeaseKey))
	assert.Equal(t, time.Minute, mr.TTL(testLeaseKey))
}

func TestRedis_AcquireWhileHeld(t *testing.T) {
	ctx := context.Background()
	_, l := newRedisLease(t, time.Minute)

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	defer release(ctx)

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrHeld)
}

func TestRedis_ReleaseByOwner(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLease(t, time.Minute)

	release, err := l.Acquire(ctx)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(testLeaseKey))

	// Releasing twice is harmless
	require.NoError(t, release(ctx))

	release, err = l.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestRedis_ExpiredLeaseNotReleasedByFormerHolder(t *testing.T) {
	ctx := context.Background()
	mr, l := newRedisLease(t, time.Second)

	stale, err := l.Acquire(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(testLeaseKey))

	current, err := l.Acquire(ctx)
	require.NoError(t, err)
	token, err := mr.Get(testLeaseKey)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))

	got, err := mr.Get(testLeaseKey)
	require.NoError(t, err, "lease taken over by the new holder must survive")
	assert.Equal(t, token, got)

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, current(ctx))
	assert.False(t, mr.Exists(testLeaseKey))
}

func TestRedis_AcquireServerDown(t *testing.T) {
	mr, l := newRedisLease(t, time.Minute)
	mr.Close()

	_, err := l.Acquire(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrHeld)
}
