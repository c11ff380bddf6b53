package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func testTiers() []domain.DonorTier {
	return []domain.DonorTier{
		{RoleID: "r-bronze", Name: "Bronze", MinAmount: 10, MaxAmount: 50},
		{RoleID: "r-silver", Name: "Silver", MinAmount: 51, MaxAmount: 100},
		{RoleID: "r-gold", Name: "Gold", MinAmount: 101},
	}
}

func TestEvaluateTier_GrantsNewTier(t *testing.T) {
	user := domain.NewUser("u1", time.Now())

	change := EvaluateTier(user, 25, testTiers())
	require.NotNil(t, change)

	assert.Equal(t, "r-bronze", change.Granted)
	assert.Equal(t, "Bronze", change.Tier)
	assert.Empty(t, change.Revoked)
	assert.True(t, user.HasRole("r-bronze"))
}

func TestEvaluateTier_UpgradeRevokesLowerTier(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.Roles = []string{"r-bronze", "r-unrelated"}

	change := EvaluateTier(user, 75, testTiers())
	require.NotNil(t, change)

	assert.Equal(t, "r-silver", change.Granted)
	assert.Equal(t, []string{"r-bronze"}, change.Revoked)
	assert.True(t, user.HasRole("r-silver"))
	assert.False(t, user.HasRole("r-bronze"))
	assert.True(t, user.HasRole("r-unrelated"), "non-tier roles are untouched")
}

func TestEvaluateTier_NeverDowngrades(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.Roles = []string{"r-gold"}

	// The total corresponds to Bronze, but the held Gold role wins.
	change := EvaluateTier(user, 25, testTiers())

	assert.Nil(t, change)
	assert.True(t, user.HasRole("r-gold"))
}

func TestEvaluateTier_NoChangeAtSameTier(t *testing.T) {
	user := domain.NewUser("u1", time.Now())
	user.Roles = []string{"r-silver"}

	change := EvaluateTier(user, 80, testTiers())

	assert.Nil(t, change)
}

func TestEvaluateTier_BelowEveryTier(t *testing.T) {
	user := domain.NewUser("u1", time.Now())

	change := EvaluateTier(user, 5, testTiers())

	assert.Nil(t, change)
	assert.Empty(t, user.Roles)
}

func TestEvaluateTier_OpenEndedTopTier(t *testing.T) {
	user := domain.NewUser("u1", time.Now())

	change := EvaluateTier(user, 100000, testTiers())
	require.NotNil(t, change)

	assert.Equal(t, "r-gold", change.Granted)
}
