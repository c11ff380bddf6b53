package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func TestTouchStreak(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		streak          domain.Streak
		now             time.Time
		expectedCurrent int
		expectedLongest int
	}{
		{
			name:            "first donation starts at one",
			streak:          domain.Streak{},
			now:             base,
			expectedCurrent: 1,
			expectedLongest: 1,
		},
		{
			name:            "within 24h increments",
			streak:          domain.Streak{Current: 2, Longest: 2, LastDonation: base},
			now:             base.Add(23 * time.Hour),
			expectedCurrent: 3,
			expectedLongest: 3,
		},
		{
			name:            "exactly 24h still increments",
			streak:          domain.Streak{Current: 1, Longest: 1, LastDonation: base},
			now:             base.Add(24 * time.Hour),
			expectedCurrent: 2,
			expectedLongest: 2,
		},
		{
			name:            "grace window holds the streak",
			streak:          domain.Streak{Current: 5, Longest: 5, LastDonation: base},
			now:             base.Add(30 * time.Hour),
			expectedCurrent: 5,
			expectedLongest: 5,
		},
		{
			name:            "beyond 48h resets to one",
			streak:          domain.Streak{Current: 5, Longest: 5, LastDonation: base},
			now:             base.Add(50 * time.Hour),
			expectedCurrent: 1,
			expectedLongest: 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.streak
			TouchStreak(&s, tc.now)

			assert.Equal(t, tc.expectedCurrent, s.Current)
			assert.Equal(t, tc.expectedLongest, s.Longest)
			assert.Equal(t, tc.now, s.LastDonation, "timestamp updates on every donation")
		})
	}
}
