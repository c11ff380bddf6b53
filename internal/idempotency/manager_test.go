package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_Execute_RunsOnce(t *testing.T) {
	client := setupTestRedis(t)
	log := testLogger()
	m := NewManager(NewRedisStore(client, log), log)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) (interface{}, error) {
		calls++
		return "done", nil
	}

	key := GenerateKey("donation", "g1", "m1")

	first, err := m.Execute(ctx, key, time.Hour, op)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := m.Execute(ctx, key, time.Hour, op)
	require.NoError(t, err)
	assert.True(t, second.FromCache)

	assert.Equal(t, 1, calls, "the operation must run exactly once per key")
}

func TestManager_Execute_DistinctKeys(t *testing.T) {
	client := setupTestRedis(t)
	log := testLogger()
	m := NewManager(NewRedisStore(client, log), log)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) (interface{}, error) {
		calls++
		return nil, nil
	}

	_, err := m.Execute(ctx, GenerateKey("donation", "g1", "m1"), time.Hour, op)
	require.NoError(t, err)
	_, err = m.Execute(ctx, GenerateKey("donation", "g1", "m2"), time.Hour, op)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestManager_Execute_InProgress(t *testing.T) {
	client := setupTestRedis(t)
	log := testLogger()
	store := NewRedisStore(client, log)
	m := NewManager(store, log)
	ctx := context.Background()

	key := GenerateKey("donation", "g1", "m1")

	// Simulate a concurrent delivery holding the lock with its record in
	// the processing state.
	locked, err := store.Lock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, store.Set(ctx, key, &Record{Status: StatusProcessing}, time.Minute))

	_, err = m.Execute(ctx, key, time.Hour, func(context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrRequestInProgress)
}

func TestManager_Execute_OperationErrorNotCached(t *testing.T) {
	client := setupTestRedis(t)
	log := testLogger()
	m := NewManager(NewRedisStore(client, log), log)
	ctx := context.Background()

	key := GenerateKey("donation", "g1", "m1")

	_, err := m.Execute(ctx, key, time.Hour, func(context.Context) (interface{}, error) {
		return nil, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	result, err := m.Execute(ctx, key, time.Hour, func(context.Context) (interface{}, error) {
		return "retried", nil
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache, "failed operations leave no record and may be retried")
}

func TestGenerateKey_Deterministic(t *testing.T) {
	assert.Equal(t,
		GenerateKey("donation", "g1", "m1"),
		GenerateKey("donation", "g1", "m1"),
	)
	assert.NotEqual(t,
		GenerateKey("donation", "g1", "m1"),
		GenerateKey("donation", "g1", "m2"),
	)
}
