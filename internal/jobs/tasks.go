package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeAchievementsRepair = "achievements:repair"
	TaskTypeCloseDraw          = "draw:close"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// AchievementsRepairPayload targets either a single guild or, when GuildID
// is empty, every known guild.
type AchievementsRepairPayload struct {
	GuildID string `json:"guild_id,omitempty"`
}

// CloseDrawPayload identifies the draw to close.
type CloseDrawPayload struct {
	GuildID string `json:"guild_id"`
	DrawID  string `json:"draw_id"`
}

func NewAchievementsRepairTask(guildID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AchievementsRepairPayload{GuildID: guildID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeAchievementsRepair, payload, asynq.Queue(QueueLow)), nil
}

func NewCloseDrawTask(guildID, drawID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CloseDrawPayload{GuildID: guildID, DrawID: drawID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeCloseDraw, payload, asynq.Queue(QueueDefault)), nil
}
