package jobs

import (
	"context"
	"log/slog"
)

// DrawCloseEnqueuer schedules winner selection for draws that reached
// capacity. It satisfies the pipeline's DrawCloser.
type DrawCloseEnqueuer struct {
	manager Manager
	log     *slog.Logger
}

func NewDrawCloseEnqueuer(manager Manager, log *slog.Logger) *DrawCloseEnqueuer {
	return &DrawCloseEnqueuer{manager: manager, log: log}
}

func (e *DrawCloseEnqueuer) EnqueueClose(ctx context.Context, guildID, drawID string) error {
	task, err := NewCloseDrawTask(guildID, drawID)
	if err != nil {
		return err
	}

	info, err := e.manager.Enqueue(ctx, task)
	if err != nil {
		return err
	}

	e.log.Info("draw close task enqueued",
		slog.String("guild_id", guildID),
		slog.String("draw_id", drawID),
		slog.String("task_id", info.ID),
	)
	return nil
}
