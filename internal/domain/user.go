package domain

import "time"

// Donation is a single recognized tip recorded against a user.
type Donation struct {
	Amount         float64   `json:"amount"` // USD value at processing time
	Currency       string    `json:"currency"`
	OriginalAmount float64   `json:"original_amount"`
	Recipient      string    `json:"recipient"`
	At             time.Time `json:"at"`
}

// Streak tracks consecutive-day donation activity for a user.
type Streak struct {
	Current      int       `json:"current"`
	Longest      int       `json:"longest"`
	LastDonation time.Time `json:"last_donation"`
}

// SelectedDrawAuto means the user has not restricted allocation to a single draw.
const SelectedDrawAuto = "auto"

// User is a guild member known to the raffle system. Users are created lazily
// on their first recognized donation and never deleted.
type User struct {
	ID           string         `json:"id"`
	TotalDonated float64        `json:"total_donated"`
	Donations    []Donation     `json:"donations"`
	Entries      map[string]int `json:"entries"` // draw id -> entry count
	Achievements []string       `json:"achievements"`
	Wins         int            `json:"wins"`
	Referrals    int            `json:"referrals"`
	Streak       Streak         `json:"streak"`
	SelectedDraw string         `json:"selected_draw,omitempty"`
	Roles        []string       `json:"roles,omitempty"` // mirrored platform role ids
	CreatedAt    time.Time      `json:"created_at"`
}

// NewUser returns a fresh user record with initialized maps.
func NewUser(id string, now time.Time) *User {
	return &User{
		ID:        id,
		Entries:   make(map[string]int),
		CreatedAt: now,
	}
}

// HasRole reports whether the user currently holds the given role id.
func (u *User) HasRole(roleID string) bool {
	if u == nil || roleID == "" {
		return false
	}
	for _, r := range u.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement key was already granted.
func (u *User) HasAchievement(key string) bool {
	if u == nil {
		return false
	}
	for _, a := range u.Achievements {
		if a == key {
			return true
		}
	}
	return false
}

// GrantAchievement appends the key to the achievement set. A key already
// present is never duplicated.
func (u *User) GrantAchievement(key string) bool {
	if u == nil || key == "" || u.HasAchievement(key) {
		return false
	}
	u.Achievements = append(u.Achievements, key)
	return true
}
