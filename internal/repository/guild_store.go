// Package repository implements the persistence boundary: the per-guild
// state document in Redis and the donation audit log in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

const (
	guildStateKeyPattern  = "guild:state:%s"
	guildStateScanPattern = "guild:state:*"
)

// ErrGuildNotFound signals that no document exists for the guild yet.
var ErrGuildNotFound = errors.New("guild state not found")

// GuildStore is the load/save contract for per-guild documents. The core
// pipeline mutates a loaded document in memory and hands it back whole.
type GuildStore interface {
	Load(ctx context.Context, guildID string) (*domain.GuildState, error)
	Save(ctx context.Context, state *domain.GuildState) error
	GuildIDs(ctx context.Context) ([]string, error)
}

// RedisGuildStore persists guild documents as JSON values in Redis.
type RedisGuildStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisGuildStore initializes a Redis-backed GuildStore implementation.
func NewRedisGuildStore(client *redis.Client, log *slog.Logger) *RedisGuildStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisGuildStore{
		client: client,
		log:    log,
	}
}

// Load returns the stored guild document or ErrGuildNotFound when absent.
func (s *RedisGuildStore) Load(ctx context.Context, guildID string) (*domain.GuildState, error) {
	key := guildStateKey(guildID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGuildNotFound
		}

		s.log.Error("failed to load guild state", "guild_id", guildID, "error", err)
		return nil, err
	}

	var state domain.GuildState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.log.Error("failed to decode guild state", "guild_id", guildID, "error", err)
		return nil, err
	}
	state.GuildID = guildID

	return &state, nil
}

// Save writes the full guild document back. Guild documents are durable
// state and carry no TTL.
func (s *RedisGuildStore) Save(ctx context.Context, state *domain.GuildState) error {
	if state == nil || state.GuildID == "" {
		return errors.New("guild state must carry a guild id")
	}
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		s.log.Error("failed to encode guild state", "guild_id", state.GuildID, "error", err)
		return err
	}

	key := guildStateKey(state.GuildID)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		s.log.Error("failed to save guild state", "guild_id", state.GuildID, "error", err)
		return err
	}

	return nil
}

// GuildIDs lists every guild with a stored document by scanning Redis keys.
func (s *RedisGuildStore) GuildIDs(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		ids    []string
	)

	prefix := fmt.Sprintf(guildStateKeyPattern, "")
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, guildStateScanPattern, 100).Result()
		if err != nil {
			s.log.Error("failed to scan guild states", "error", err)
			return nil, err
		}

		for _, key := range keys {
			if len(key) > len(prefix) {
				ids = append(ids, key[len(prefix):])
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return ids, nil
}

func guildStateKey(guildID string) string {
	return fmt.Sprintf(guildStateKeyPattern, guildID)
}
