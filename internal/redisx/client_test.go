package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestIdempotencyStoreLifecycle(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	reserved, id, err := store.Reserve(ctx, 3, "abc")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Zero(t, id)

	reserved, id, err = store.Reserve(ctx, 3, "abc")
	require.NoError(t, err)
	assert.False(t, reserved, "second reserve while pending")
	assert.Zero(t, id)

	require.NoError(t, store.Complete(ctx, 3, "abc", 99))
	reserved, id, err = store.Reserve(ctx, 3, "abc")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, int64(99), id)

	// keys are per merchant
	reserved, _, err = store.Reserve(ctx, 4, "abc")
	require.NoError(t, err)
	assert.True(t, reserved)

	mr.FastForward(TTLIdempotency + time.Minute)
	reserved, _, err = store.Reserve(ctx, 3, "abc")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestIdempotencyStoreRelease(t *testing.T) {
	_, client := newTestClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, 1, "k"))

	reserved, _, err := store.Reserve(ctx, 1, "k")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestDeduper(t *testing.T) {
	mr, client := newTestClient(t)
	d := NewDeduper(client, "ledger-audit")
	ctx := context.Background()

	seen, err := d.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Mark(ctx, "evt-1"))
	seen, err = d.Seen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, mr.Exists("dedup:ledger-audit:evt-1"))
}
