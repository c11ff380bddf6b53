package reward

import (
	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// Achievement is one catalog entry with a pure predicate over user state.
type Achievement struct {
	Key         string
	Name        string
	Description string
	Earned      func(u *domain.User) bool
}

// Catalog is the fixed achievement list evaluated after every donation.
var Catalog = []Achievement{
	{
		Key:         "first_tip",
		Name:        "First Tip",
		Description: "Made a first donation",
		Earned:      func(u *domain.User) bool { return len(u.Donations) >= 1 },
	},
	{
		Key:         "supporter_10",
		Name:        "Supporter",
		Description: "Donated $10 in total",
		Earned:      func(u *domain.User) bool { return u.TotalDonated >= 10 },
	},
	{
		Key:         "patron_100",
		Name:        "Patron",
		Description: "Donated $100 in total",
		Earned:      func(u *domain.User) bool { return u.TotalDonated >= 100 },
	},
	{
		Key:         "whale_1000",
		Name:        "Whale",
		Description: "Donated $1000 in total",
		Earned:      func(u *domain.User) bool { return u.TotalDonated >= 1000 },
	},
	{
		Key:         "streak_3",
		Name:        "Warming Up",
		Description: "Kept a 3-day donation streak",
		Earned:      func(u *domain.User) bool { return u.Streak.Longest >= 3 },
	},
	{
		Key:         "streak_7",
		Name:        "Regular",
		Description: "Kept a 7-day donation streak",
		Earned:      func(u *domain.User) bool { return u.Streak.Longest >= 7 },
	},
	{
		Key:         "streak_30",
		Name:        "Devoted",
		Description: "Kept a 30-day donation streak",
		Earned:      func(u *domain.User) bool { return u.Streak.Longest >= 30 },
	},
	{
		Key:         "referrer_5",
		Name:        "Recruiter",
		Description: "Referred 5 members",
		Earned:      func(u *domain.User) bool { return u.Referrals >= 5 },
	},
	{
		Key:         "winner_1",
		Name:        "Lucky",
		Description: "Won a draw",
		Earned:      func(u *domain.User) bool { return u.Wins >= 1 },
	},
	{
		Key:         "winner_5",
		Name:        "Serial Winner",
		Description: "Won five draws",
		Earned:      func(u *domain.User) bool { return u.Wins >= 5 },
	},
}

// catalogByKey is built once for rendering lookups.
var catalogByKey = func() map[string]Achievement {
	m := make(map[string]Achievement, len(Catalog))
	for _, a := range Catalog {
		m[a.Key] = a
	}
	return m
}()

// AchievementByKey resolves a catalog entry for notification rendering.
func AchievementByKey(key string) (Achievement, bool) {
	a, ok := catalogByKey[key]
	return a, ok
}

// EvaluateAchievements grants every achievement whose predicate is newly true
// and returns the granted keys. Already-earned achievements are never
// re-granted, so the evaluation is safe to re-run at any time.
func EvaluateAchievements(u *domain.User) []string {
	if u == nil {
		return nil
	}

	var granted []string
	for _, a := range Catalog {
		if u.HasAchievement(a.Key) {
			continue
		}
		if a.Earned != nil && a.Earned(u) {
			u.GrantAchievement(a.Key)
			granted = append(granted, a.Key)
		}
	}
	return granted
}

// RepairAchievements re-evaluates every user in the guild from scratch and
// returns the count of newly granted achievements per user id. Users that
// gained nothing are omitted.
func RepairAchievements(state *domain.GuildState) map[string]int {
	repaired := make(map[string]int)
	if state == nil {
		return repaired
	}
	for id, u := range state.Users {
		if granted := EvaluateAchievements(u); len(granted) > 0 {
			repaired[id] = len(granted)
		}
	}
	return repaired
}
