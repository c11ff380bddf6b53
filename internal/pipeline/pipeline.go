// Package pipeline orchestrates one donation unit of work: parse, policy,
// price resolution, entry allocation, rewards, persistence, notification.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
	"github.com/tipraffle/tipraffle-bot/internal/draw"
	apperrors "github.com/tipraffle/tipraffle-bot/internal/errors"
	"github.com/tipraffle/tipraffle-bot/internal/idempotency"
	"github.com/tipraffle/tipraffle-bot/internal/parser"
	"github.com/tipraffle/tipraffle-bot/internal/policy"
	"github.com/tipraffle/tipraffle-bot/internal/repository"
	"github.com/tipraffle/tipraffle-bot/internal/reward"
	"github.com/tipraffle/tipraffle-bot/pkg/logger"
	"github.com/tipraffle/tipraffle-bot/pkg/metrics"
)

// PriceResolver values a donation in USD.
type PriceResolver interface {
	ResolveUSD(ctx context.Context, rawText, symbol string, qty float64) (float64, error)
}

// DrawCloser schedules winner selection for a draw that reached capacity.
type DrawCloser interface {
	EnqueueClose(ctx context.Context, guildID, drawID string) error
}

// Pipeline processes tipping-bot messages into draw entries and rewards.
type Pipeline struct {
	parser    *parser.Parser
	resolver  PriceResolver
	allocator *draw.Allocator
	store     repository.GuildStore
	audit     repository.DonationLog
	idem      idempotency.Manager
	sink      Sink
	closer    DrawCloser
	locks     *guildLocks
	log       *slog.Logger
	errs      *apperrors.Handler

	rngMu sync.Mutex
	rng   *rand.Rand

	now func() time.Time
}

// New wires a Pipeline. audit, idem, and sink may be nil.
func New(
	p *parser.Parser,
	resolver PriceResolver,
	store repository.GuildStore,
	audit repository.DonationLog,
	idem idempotency.Manager,
	sink Sink,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if audit == nil {
		audit = repository.NoopDonationLog{}
	}
	if sink == nil {
		sink = NoopSink{}
	}

	return &Pipeline{
		parser:    p,
		resolver:  resolver,
		allocator: draw.NewAllocator(log),
		store:     store,
		audit:     audit,
		idem:      idem,
		sink:      sink,
		locks:     newGuildLocks(),
		log:       log,
		errs:      apperrors.NewHandler(log, true),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetSink replaces the notification sink. The bot transport is constructed
// after the pipeline, so the notifier is attached late.
func (p *Pipeline) SetSink(s Sink) {
	if s == nil {
		s = NoopSink{}
	}
	p.sink = s
}

// SetDrawCloser attaches the scheduler that closes draws which have reached
// their entry cap.
func (p *Pipeline) SetDrawCloser(c DrawCloser) {
	p.closer = c
}

// HandleMessage processes one inbound message from the tipping bot. Messages
// that are not donation announcements are dropped silently; that is the
// common case, not an error.
func (p *Pipeline) HandleMessage(ctx context.Context, guildID, messageID, text string) (err error) {
	start := time.Now()
	ctx = logger.WithCorrelationID(ctx)

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic during donation processing",
				slog.String("guild_id", guildID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			metrics.RecordDonation(metrics.OutcomeError, time.Since(start))
			err = nil
		}
	}()

	tip, ok := p.parser.Parse(text)
	if !ok {
		metrics.RecordDonation(metrics.OutcomeNoMatch, time.Since(start))
		return nil
	}

	process := func(ctx context.Context) (interface{}, error) {
		return nil, p.processTip(ctx, guildID, text, tip)
	}

	if p.idem != nil {
		key := idempotency.GenerateKey("donation", guildID, messageID)
		result, execErr := p.idem.Execute(ctx, key, 24*time.Hour, process)
		if execErr != nil {
			if errors.Is(execErr, idempotency.ErrRequestInProgress) {
				metrics.RecordDonation(metrics.OutcomeDuplicate, time.Since(start))
				return nil
			}
			return p.finish(ctx, start, execErr)
		}
		if result != nil && result.FromCache {
			metrics.RecordDonation(metrics.OutcomeDuplicate, time.Since(start))
			return nil
		}
	} else if procErr := p.processTip(ctx, guildID, text, tip); procErr != nil {
		return p.finish(ctx, start, procErr)
	}

	metrics.RecordDonation(metrics.OutcomeProcessed, time.Since(start))
	return nil
}

// finish logs the failed unit of work and reports its outcome metric. The
// returned error is always nil: the platform layer has nothing to retry.
func (p *Pipeline) finish(ctx context.Context, start time.Time, err error) error {
	if errors.Is(err, errIneligible) {
		metrics.RecordDonation(metrics.OutcomeIneligible, time.Since(start))
		return nil
	}

	var appErr *apperrors.AppError
	outcome := metrics.OutcomeError
	if errors.As(err, &appErr) && appErr.Code == "E300" {
		outcome = metrics.OutcomePriceUnavailable
	}

	p.errs.Handle(ctx, err)
	metrics.RecordDonation(outcome, time.Since(start))
	return nil
}

// errIneligible marks a tip dropped by the recipient/currency policy. It is
// an expected outcome and is swallowed in finish.
var errIneligible = errors.New("tip not eligible")

func (p *Pipeline) processTip(ctx context.Context, guildID, rawText string, tip parser.Tip) error {
	unlock := p.locks.lock(guildID)
	defer unlock()

	state, err := p.store.Load(ctx, guildID)
	if err != nil {
		if !errors.Is(err, repository.ErrGuildNotFound) {
			return apperrors.NewStoreError(err)
		}
		state = domain.NewGuildState(guildID)
	}

	if !policy.Eligible(tip.Recipient, tip.Currency, state.Settings) {
		p.log.Debug("tip dropped by policy",
			slog.String("guild_id", guildID),
			slog.String("currency", tip.Currency),
		)
		return errIneligible
	}

	usd, err := p.resolver.ResolveUSD(ctx, rawText, tip.Currency, tip.Amount)
	if err != nil {
		return apperrors.NewPriceUnavailableError(tip.Currency, err)
	}

	now := p.now()
	userID := parser.CanonicalID(tip.Sender)
	user := state.UserByID(userID, now)

	if state.Settings.Features.Streaks {
		reward.TouchStreak(&user.Streak, now)
	}

	donation := domain.Donation{
		Amount:         usd,
		Currency:       tip.Currency,
		OriginalAmount: tip.Amount,
		Recipient:      parser.CanonicalID(tip.Recipient),
		At:             now,
	}
	user.TotalDonated += usd
	user.Donations = append(user.Donations, donation)

	uctx := draw.Context{
		SelectedDraw: user.SelectedDraw,
		VIP:          user.HasRole(state.Settings.VIPRoleID),
	}
	grants := p.allocator.Allocate(user, usd, state.ActiveDraws(), uctx)

	var roleChange *reward.RoleChange
	if state.Settings.Features.DonorRoles {
		roleChange = reward.EvaluateTier(user, user.TotalDonated, state.Settings.TiersByMinAmount())
	}

	var unlocked []string
	if state.Settings.Features.Achievements {
		unlocked = reward.EvaluateAchievements(user)
	}

	if err := p.store.Save(ctx, state); err != nil {
		return apperrors.NewStoreError(err)
	}

	// The audit trail is best-effort: the guild document is already the
	// source of truth at this point.
	if err := p.audit.Append(ctx, guildID, userID, donation); err != nil {
		p.log.Warn("donation audit append failed",
			slog.String("guild_id", guildID),
			slog.Any("error", err),
		)
	}

	for drawID, n := range grants {
		metrics.RecordEntriesGranted(drawID, n)
	}
	metrics.RecordDonationValue(usd)

	// A draw that just hit its entry cap cannot accept further entries, so
	// winner selection is scheduled right away.
	if p.closer != nil {
		for drawID := range grants {
			d := state.Draws[drawID]
			if d == nil || !d.Active || d.Remaining() != 0 {
				continue
			}
			if err := p.closer.EnqueueClose(ctx, guildID, drawID); err != nil {
				p.log.Warn("draw close scheduling failed",
					slog.String("guild_id", guildID),
					slog.String("draw_id", drawID),
					slog.Any("error", err),
				)
			}
		}
	}

	p.sink.Notify(guildID, DonationProcessed{
		UserID:         userID,
		USD:            usd,
		Currency:       tip.Currency,
		OriginalAmount: tip.Amount,
		Grants:         grants,
	})
	if roleChange != nil {
		p.sink.Notify(guildID, RoleChanged{
			UserID:  roleChange.UserID,
			Granted: roleChange.Granted,
			Revoked: roleChange.Revoked,
			Tier:    roleChange.Tier,
		})
	}
	for _, key := range unlocked {
		ev := AchievementUnlocked{UserID: userID, Key: key}
		if a, ok := reward.AchievementByKey(key); ok {
			ev.Name = a.Name
			ev.Description = a.Description
		}
		p.sink.Notify(guildID, ev)
	}

	return nil
}

// CloseDraw runs winner selection for the draw and persists the terminal
// transition.
func (p *Pipeline) CloseDraw(ctx context.Context, guildID, drawID string) error {
	unlock := p.locks.lock(guildID)
	defer unlock()

	state, err := p.store.Load(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrGuildNotFound) {
			return apperrors.NewDrawStateError("guild has no draws")
		}
		return apperrors.NewStoreError(err)
	}

	d, ok := state.Draws[drawID]
	if !ok || d == nil {
		return apperrors.NewDrawStateError("draw not found: " + drawID)
	}
	if !d.Active {
		return apperrors.NewDrawStateError("draw already closed: " + drawID)
	}

	total := d.TotalEntries()

	p.rngMu.Lock()
	winnerID, err := draw.SelectWinner(d, p.rng)
	p.rngMu.Unlock()
	if err != nil {
		return apperrors.NewDrawStateError("draw has no entries: " + drawID)
	}

	winner := state.UserByID(winnerID, p.now())
	winner.Wins++

	var unlocked []string
	if state.Settings.Features.Achievements {
		unlocked = reward.EvaluateAchievements(winner)
	}

	if err := p.store.Save(ctx, state); err != nil {
		return apperrors.NewStoreError(err)
	}

	metrics.RecordWinner()
	p.sink.Notify(guildID, WinnerDrawn{
		DrawID:       d.ID,
		DrawName:     d.Name,
		Reward:       d.Reward,
		UserID:       winnerID,
		Entries:      d.Entries[winnerID],
		TotalEntries: total,
	})
	for _, key := range unlocked {
		ev := AchievementUnlocked{UserID: winnerID, Key: key}
		if a, ok := reward.AchievementByKey(key); ok {
			ev.Name = a.Name
			ev.Description = a.Description
		}
		p.sink.Notify(guildID, ev)
	}

	return nil
}

// RepairAchievements re-evaluates the whole guild and reports newly granted
// achievement counts per user.
func (p *Pipeline) RepairAchievements(ctx context.Context, guildID string) (map[string]int, error) {
	unlock := p.locks.lock(guildID)
	defer unlock()

	state, err := p.store.Load(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrGuildNotFound) {
			return map[string]int{}, nil
		}
		return nil, apperrors.NewStoreError(err)
	}

	repaired := reward.RepairAchievements(state)
	if len(repaired) == 0 {
		return repaired, nil
	}

	if err := p.store.Save(ctx, state); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	return repaired, nil
}
