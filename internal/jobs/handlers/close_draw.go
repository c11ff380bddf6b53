package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tipraffle/tipraffle-bot/internal/jobs"
	"github.com/tipraffle/tipraffle-bot/internal/pipeline"
)

// CloseDrawHandler runs winner selection for a scheduled draw closure.
type CloseDrawHandler struct {
	pipeline *pipeline.Pipeline
	log      *slog.Logger
}

func NewCloseDrawHandler(p *pipeline.Pipeline, log *slog.Logger) *CloseDrawHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CloseDrawHandler{pipeline: p, log: log}
}

func (h *CloseDrawHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.CloseDrawPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "close draw: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.Any("error", err),
		)
		return err
	}

	if err := h.pipeline.CloseDraw(ctx, payload.GuildID, payload.DrawID); err != nil {
		h.log.ErrorContext(ctx, "close draw failed",
			slog.String("guild_id", payload.GuildID),
			slog.String("draw_id", payload.DrawID),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}
