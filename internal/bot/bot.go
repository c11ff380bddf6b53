// Package bot is the thin platform glue: it watches group messages from the
// configured tipping bot and feeds them to the donation pipeline.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/tipraffle/tipraffle-bot/internal/pipeline"
	"github.com/tipraffle/tipraffle-bot/pkg/config"
)

// Bot wraps telebot.Bot with the donation pipeline.
type Bot struct {
	telebot  *telebot.Bot
	pipeline *pipeline.Pipeline
	tipBotID int64
	log      *slog.Logger
}

// New builds the bot instance configured according to application settings.
func New(cfg config.Config, log *slog.Logger, pipe *pipeline.Pipeline) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:  cfg.Bot.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.Bot.Timeout},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:  tb,
		pipeline: pipe,
		tipBotID: cfg.Bot.TipBotID,
		log:      log,
	}

	tb.Use(RecoveryMiddleware(log))
	tb.Use(LoggingMiddleware(log))
	tb.Handle(telebot.OnText, b.handleText)

	return b, nil
}

// handleText forwards tipping-bot messages into the pipeline. Messages from
// anyone else are ignored; the bot only listens, it never converses.
func (b *Bot) handleText(c telebot.Context) error {
	msg := c.Message()
	if msg == nil || msg.Sender == nil || msg.Chat == nil {
		return nil
	}

	if msg.Sender.ID != b.tipBotID {
		return nil
	}

	guildID := strconv.FormatInt(msg.Chat.ID, 10)
	messageID := strconv.Itoa(msg.ID)

	return b.pipeline.HandleMessage(context.Background(), guildID, messageID, msg.Text)
}

// Start runs the bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such
// as health checks and the notifier.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
