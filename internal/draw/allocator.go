// Package draw implements entry allocation and winner selection for raffle
// draws.
package draw

import (
	"log/slog"
	"math"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// Context carries the per-user inputs that gate allocation.
type Context struct {
	// SelectedDraw restricts allocation to a single draw id when set to
	// anything other than empty or domain.SelectedDrawAuto.
	SelectedDraw string
	// VIP reports whether the user holds the guild's configured VIP role.
	VIP bool
}

// Allocator grants draw entries for valued donations.
type Allocator struct {
	log *slog.Logger
}

// NewAllocator builds an Allocator.
func NewAllocator(log *slog.Logger) *Allocator {
	if log == nil {
		log = slog.Default()
	}
	return &Allocator{log: log}
}

// eligible applies the draw gating rules in order, short-circuiting on the
// first failure.
func eligible(d *domain.Draw, usd float64, uctx Context) bool {
	switch {
	case d == nil || !d.Active:
		return false
	case d.MinAmount <= 0:
		// A zero minimum would divide the donation into infinite units;
		// such draws are treated as misconfigured and skipped.
		return false
	case usd < d.MinAmount:
		return false
	case d.MaxAmount > 0 && usd > d.MaxAmount:
		return false
	case d.ManualOnly:
		return false
	case uctx.SelectedDraw != "" && uctx.SelectedDraw != domain.SelectedDrawAuto && d.ID != uctx.SelectedDraw:
		return false
	case d.VIPOnly && !uctx.VIP:
		return false
	}
	return true
}

// Allocate partitions the USD value into minimum-amount-sized units for every
// eligible draw and records the grants in both the draw ledger and the user's
// per-draw counts. Both sides of each ledger mutate together or not at all.
// The returned map contains only draws that received a non-zero grant.
func (a *Allocator) Allocate(user *domain.User, usd float64, draws []*domain.Draw, uctx Context) map[string]int {
	grants := make(map[string]int)
	if user == nil || usd <= 0 {
		return grants
	}
	if user.Entries == nil {
		user.Entries = make(map[string]int)
	}

	for _, d := range draws {
		if !eligible(d, usd, uctx) {
			continue
		}

		granted := int(math.Floor(usd / d.MinAmount))
		if remaining := d.Remaining(); remaining >= 0 && granted > remaining {
			granted = remaining
		}
		if granted <= 0 {
			continue
		}

		d.AddEntries(user.ID, granted)
		user.Entries[d.ID] += granted
		grants[d.ID] = granted

		a.log.Debug("entries granted",
			slog.String("draw_id", d.ID),
			slog.String("user_id", user.ID),
			slog.Int("entries", granted),
		)
	}

	return grants
}
