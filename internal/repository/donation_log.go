package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// DonationLog is the append-only audit trail of processed donations.
type DonationLog interface {
	Append(ctx context.Context, guildID, userID string, d domain.Donation) error
}

type donationLog struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDonationLog creates a SQL-backed donation audit log.
func NewDonationLog(db *sql.DB, log *slog.Logger) DonationLog {
	return &donationLog{
		db:  db,
		log: log,
	}
}

// Append persists one processed donation record.
func (r *donationLog) Append(ctx context.Context, guildID, userID string, d domain.Donation) error {
	const query = `
		INSERT INTO donations (guild_id, user_id, usd_amount, currency, original_amount, recipient, donated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := r.db.ExecContext(
		ctx,
		query,
		guildID,
		userID,
		d.Amount,
		d.Currency,
		d.OriginalAmount,
		d.Recipient,
		d.At,
	); err != nil {
		if r.log != nil {
			r.log.Error("failed to append donation record",
				slog.String("guild_id", guildID),
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("insert donation: %w", err)
	}

	return nil
}

// NoopDonationLog discards records. Used when the audit database is not
// configured.
type NoopDonationLog struct{}

// Append implements DonationLog.
func (NoopDonationLog) Append(context.Context, string, string, domain.Donation) error { return nil }
