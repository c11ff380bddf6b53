package bot

import (
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"
)

// RecoveryMiddleware catches panics escaping update handlers. The pipeline
// has its own recovery for units of work; this is the outer net for the
// platform glue itself.
func RecoveryMiddleware(log *slog.Logger) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in update handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					err = nil
				}
			}()

			return next(c)
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates at debug
// level; the watched channel is chatty and most updates are dropped.
func LoggingMiddleware(log *slog.Logger) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			start := time.Now()

			senderID := int64(0)
			chatID := int64(0)
			if c != nil {
				if c.Sender() != nil {
					senderID = c.Sender().ID
				}
				if c.Chat() != nil {
					chatID = c.Chat().ID
				}
			}

			err := next(c)
			log.Debug("handled update",
				slog.Int64("sender_id", senderID),
				slog.Int64("chat_id", chatID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}
