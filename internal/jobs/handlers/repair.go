// Package handlers implements asynq task handlers for background work.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tipraffle/tipraffle-bot/internal/jobs"
	"github.com/tipraffle/tipraffle-bot/internal/pipeline"
	"github.com/tipraffle/tipraffle-bot/internal/repository"
)

// AchievementsRepairHandler re-evaluates achievement grants for one guild or
// for every guild in the store.
type AchievementsRepairHandler struct {
	pipeline *pipeline.Pipeline
	store    repository.GuildStore
	log      *slog.Logger
}

func NewAchievementsRepairHandler(p *pipeline.Pipeline, store repository.GuildStore, log *slog.Logger) *AchievementsRepairHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AchievementsRepairHandler{pipeline: p, store: store, log: log}
}

func (h *AchievementsRepairHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.AchievementsRepairPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "achievements repair: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.Any("error", err),
		)
		return err
	}

	guildIDs := []string{payload.GuildID}
	if payload.GuildID == "" {
		ids, err := h.store.GuildIDs(ctx)
		if err != nil {
			return err
		}
		guildIDs = ids
	}

	for _, guildID := range guildIDs {
		repaired, err := h.pipeline.RepairAchievements(ctx, guildID)
		if err != nil {
			h.log.ErrorContext(ctx, "achievements repair failed",
				slog.String("guild_id", guildID),
				slog.Any("error", err),
			)
			continue
		}

		granted := 0
		for _, n := range repaired {
			granted += n
		}
		h.log.InfoContext(ctx, "achievements repaired",
			slog.String("guild_id", guildID),
			slog.Int("users_affected", len(repaired)),
			slog.Int("achievements_granted", granted),
		)
	}

	return nil
}
