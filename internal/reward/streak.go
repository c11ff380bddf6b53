package reward

import (
	"time"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

const (
	streakIncrementWindow = 24 * time.Hour
	streakGraceWindow     = 48 * time.Hour
)

// TouchStreak applies one donation at now to the streak counters. Within 24h
// of the previous donation the streak grows; between 24h and 48h it is held
// (grace window); beyond 48h it resets to 1. The last-donation timestamp is
// always updated.
func TouchStreak(s *domain.Streak, now time.Time) {
	if s == nil {
		return
	}

	switch elapsed := now.Sub(s.LastDonation); {
	case s.LastDonation.IsZero():
		s.Current = 1
	case elapsed <= streakIncrementWindow:
		s.Current++
	case elapsed <= streakGraceWindow:
		// held
	default:
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastDonation = now
}
