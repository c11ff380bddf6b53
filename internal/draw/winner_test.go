package draw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWinner_TerminalTransition(t *testing.T) {
	d := activeDraw("d1", 5)
	d.Entries = map[string]int{"u1": 3}

	winner, err := SelectWinner(d, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, "u1", winner)
	assert.False(t, d.Active)
	assert.Equal(t, "u1", d.Winner)
}

func TestSelectWinner_NoEntries(t *testing.T) {
	d := activeDraw("d1", 5)

	_, err := SelectWinner(d, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoEntries)
	assert.True(t, d.Active, "a draw with no entries stays open")
}

func TestSelectWinner_WeightedByEntries(t *testing.T) {
	// u1 holds 3 of 4 entries, so over many seeded runs it should win
	// roughly 75% of the time.
	rng := rand.New(rand.NewSource(42))

	const rounds = 10000
	wins := map[string]int{}
	for i := 0; i < rounds; i++ {
		d := activeDraw("d1", 5)
		d.Entries = map[string]int{"u1": 3, "u2": 1}

		winner, err := SelectWinner(d, rng)
		require.NoError(t, err)
		wins[winner]++
	}

	ratio := float64(wins["u1"]) / rounds
	assert.InDelta(t, 0.75, ratio, 0.02)
	assert.Equal(t, rounds, wins["u1"]+wins["u2"])
}
