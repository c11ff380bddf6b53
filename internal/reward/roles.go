// Package reward computes donor role tiers, donation streaks, and
// achievement unlocks from updated user state.
package reward

import (
	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// RoleChange describes a donor tier transition for the platform layer to
// apply and announce.
type RoleChange struct {
	UserID  string
	Granted string
	Revoked []string
	Tier    string
}

// tierFor selects the highest tier whose range contains total.
func tierFor(total float64, tiers []domain.DonorTier) (domain.DonorTier, bool) {
	var best domain.DonorTier
	found := false
	for _, t := range tiers {
		if !t.Contains(total) {
			continue
		}
		if !found || t.MinAmount > best.MinAmount {
			best = t
			found = true
		}
	}
	return best, found
}

// heldTier finds the highest configured tier role the user currently holds.
func heldTier(user *domain.User, tiers []domain.DonorTier) (domain.DonorTier, bool) {
	var best domain.DonorTier
	found := false
	for _, t := range tiers {
		if !user.HasRole(t.RoleID) {
			continue
		}
		if !found || t.MinAmount > best.MinAmount {
			best = t
			found = true
		}
	}
	return best, found
}

// EvaluateTier computes the donor role transition for the user's new
// cumulative total. Tiers never downgrade: when the computed tier sits below
// the held one the user keeps what they have. The user's mirrored role set is
// updated in place and the change to announce is returned, or nil when
// nothing moves.
func EvaluateTier(user *domain.User, newTotal float64, tiers []domain.DonorTier) *RoleChange {
	if user == nil || len(tiers) == 0 {
		return nil
	}

	next, ok := tierFor(newTotal, tiers)
	if !ok {
		return nil
	}

	if held, ok := heldTier(user, tiers); ok && next.MinAmount <= held.MinAmount {
		return nil
	}

	revoked := make([]string, 0, len(tiers))
	kept := user.Roles[:0]
	for _, roleID := range user.Roles {
		if roleID != next.RoleID && isTierRole(roleID, tiers) {
			revoked = append(revoked, roleID)
			continue
		}
		kept = append(kept, roleID)
	}
	user.Roles = kept
	if !user.HasRole(next.RoleID) {
		user.Roles = append(user.Roles, next.RoleID)
	}

	return &RoleChange{
		UserID:  user.ID,
		Granted: next.RoleID,
		Revoked: revoked,
		Tier:    next.Name,
	}
}

func isTierRole(roleID string, tiers []domain.DonorTier) bool {
	for _, t := range tiers {
		if t.RoleID == roleID {
			return true
		}
	}
	return false
}
