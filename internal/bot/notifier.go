package bot

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/tipraffle/tipraffle-bot/internal/pipeline"
)

// Notifier renders pipeline events as chat messages. Deliveries run on their
// own goroutine so a slow send never stalls donation processing.
type Notifier struct {
	bot *telebot.Bot
	log *slog.Logger
}

// NewNotifier builds a Notifier over the bot connection.
func NewNotifier(bot *telebot.Bot, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{bot: bot, log: log}
}

// Notify implements pipeline.Sink.
func (n *Notifier) Notify(guildID string, event pipeline.Event) {
	if n == nil || n.bot == nil {
		return
	}

	chatID, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		n.log.Error("notifier: bad guild id", slog.String("guild_id", guildID), slog.Any("error", err))
		return
	}

	text := render(event)
	if text == "" {
		return
	}

	go func() {
		if _, err := n.bot.Send(&telebot.Chat{ID: chatID}, text); err != nil {
			n.log.Error("notifier: send failed",
				slog.String("guild_id", guildID),
				slog.String("event", event.Kind()),
				slog.Any("error", err),
			)
		}
	}()
}

func render(event pipeline.Event) string {
	switch ev := event.(type) {
	case pipeline.DonationProcessed:
		var sb strings.Builder
		fmt.Fprintf(&sb, "💸 %s donated %.8g %s ($%.2f)", ev.UserID, ev.OriginalAmount, ev.Currency, ev.USD)
		if len(ev.Grants) > 0 {
			drawIDs := make([]string, 0, len(ev.Grants))
			for id := range ev.Grants {
				drawIDs = append(drawIDs, id)
			}
			sort.Strings(drawIDs)

			parts := make([]string, 0, len(drawIDs))
			for _, id := range drawIDs {
				parts = append(parts, fmt.Sprintf("%d× %s", ev.Grants[id], id))
			}
			fmt.Fprintf(&sb, " — entries: %s", strings.Join(parts, ", "))
		}
		return sb.String()

	case pipeline.RoleChanged:
		return fmt.Sprintf("🏅 %s reached the %s donor tier!", ev.UserID, ev.Tier)

	case pipeline.AchievementUnlocked:
		name := ev.Name
		if name == "" {
			name = ev.Key
		}
		return fmt.Sprintf("🏆 %s unlocked the achievement \"%s\"", ev.UserID, name)

	case pipeline.WinnerDrawn:
		return fmt.Sprintf("🎉 %s won the draw \"%s\" (%s) with %d of %d entries!",
			ev.UserID, ev.DrawName, ev.Reward, ev.Entries, ev.TotalEntries)
	}

	return ""
}
