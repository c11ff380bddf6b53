package repository

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

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisGuildStore_SaveAndLoad(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	store := NewRedisGuildStore(client, testLogger())
	ctx := context.Background()

	state := domain.NewGuildState("g1")
	state.Settings.AllowedRecipients = domain.RecipientList{"bob"}
	user := state.UserByID("u1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	user.TotalDonated = 42.5
	state.Draws["d1"] = &domain.Draw{ID: "d1", MinAmount: 5, Active: true, Entries: map[string]int{"u1": 2}}

	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "g1")
	require.NoError(t, err)

	assert.Equal(t, "g1", loaded.GuildID)
	assert.Equal(t, domain.RecipientList{"bob"}, loaded.Settings.AllowedRecipients)
	if assert.Contains(t, loaded.Users, "u1") {
		assert.InDelta(t, 42.5, loaded.Users["u1"].TotalDonated, 1e-9)
	}
	if assert.Contains(t, loaded.Draws, "d1") {
		assert.Equal(t, 2, loaded.Draws["d1"].Entries["u1"])
	}
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisGuildStore_LoadNotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	store := NewRedisGuildStore(client, testLogger())

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGuildNotFound)
}

func TestRedisGuildStore_SaveRequiresGuildID(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	store := NewRedisGuildStore(client, testLogger())

	assert.Error(t, store.Save(context.Background(), nil))
	assert.Error(t, store.Save(context.Background(), &domain.GuildState{}))
}

func TestRedisGuildStore_LoadFiltersCorruptRecipients(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	store := NewRedisGuildStore(client, testLogger())
	ctx := context.Background()

	// A document with garbage in the allow-list, as written by older bot
	// versions.
	doc := `{"guild_id":"g1","settings":{"allowed_recipients":["bob",7,null,{"x":1}]}}`
	require.NoError(t, client.Set(ctx, "guild:state:g1", doc, 0).Err())

	loaded, err := store.Load(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.RecipientList{"bob"}, loaded.Settings.AllowedRecipients)
}

func TestRedisGuildStore_GuildIDs(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	store := NewRedisGuildStore(client, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewGuildState("g1")))
	require.NoError(t, store.Save(ctx, domain.NewGuildState("g2")))
	require.NoError(t, client.Set(ctx, "unrelated:key", "x", 0).Err())

	ids, err := store.GuildIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"g1", "g2"}, ids)
}
