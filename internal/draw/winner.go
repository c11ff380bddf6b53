package draw

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// ErrNoEntries is returned when a draw is closed with an empty ledger.
var ErrNoEntries = errors.New("draw: no entries to select a winner from")

// SelectWinner picks a winner weighted by entry count: a user holding n of
// the draw's N total entries wins with probability n/N. On success the draw
// is deactivated and its winner recorded; the transition is terminal. The
// caller increments the winner's win counter on the user record it holds.
func SelectWinner(d *domain.Draw, rng *rand.Rand) (string, error) {
	if d == nil {
		return "", ErrNoEntries
	}

	total := d.TotalEntries()
	if total <= 0 {
		return "", ErrNoEntries
	}

	// Iterate user ids in sorted order so the pick is a pure function of
	// the ledger and the rng stream.
	ids := make([]string, 0, len(d.Entries))
	for id, n := range d.Entries {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	target := rng.Intn(total)
	for _, id := range ids {
		target -= d.Entries[id]
		if target < 0 {
			d.Active = false
			d.Winner = id
			return id, nil
		}
	}

	return "", ErrNoEntries
}
