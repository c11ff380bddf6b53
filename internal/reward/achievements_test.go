package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func TestEvaluateAchievements(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.TotalDonated = 15
	user.Donations = []domain.Donation{{Amount: 15}}

	granted := EvaluateAchievements(user)

	assert.ElementsMatch(t, []string{"first_tip", "supporter_10"}, granted)
	assert.True(t, user.HasAchievement("first_tip"))
	assert.True(t, user.HasAchievement("supporter_10"))
}

func TestEvaluateAchievements_Idempotent(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.TotalDonated = 15
	user.Donations = []domain.Donation{{Amount: 15}}

	first := EvaluateAchievements(user)
	second := EvaluateAchievements(user)

	assert.Len(t, first, 2)
	assert.Empty(t, second, "already-earned achievements are never re-granted")
	assert.Len(t, user.Achievements, 2)
}

func TestEvaluateAchievements_StreakAndWins(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.Streak.Longest = 7
	user.Wins = 1

	granted := EvaluateAchievements(user)

	assert.ElementsMatch(t, []string{"streak_3", "streak_7", "winner_1"}, granted)
}

func TestAchievementByKey(t *testing.T) {
	a, ok := AchievementByKey("whale_1000")
	assert.True(t, ok)
	assert.Equal(t, "Whale", a.Name)

	_, ok = AchievementByKey("unknown")
	assert.False(t, ok)
}

func TestRepairAchievements(t *testing.T) {
	now := time.Now()
	state := domain.NewGuildState("g1")

	backfilled := state.UserByID("u1", now)
	backfilled.TotalDonated = 120
	backfilled.Donations = []domain.Donation{{Amount: 120}}

	current := state.UserByID("u2", now)
	current.TotalDonated = 15
	current.Donations = []domain.Donation{{Amount: 15}}
	EvaluateAchievements(current)

	repaired := RepairAchievements(state)

	// first_tip, supporter_10, patron_100 for the backfilled user; the
	// up-to-date user gains nothing and is omitted.
	assert.Equal(t, map[string]int{"u1": 3}, repaired)
}
