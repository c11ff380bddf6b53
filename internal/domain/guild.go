package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// RecipientList is the allow-list of tip recipients. Guild documents written
// by older bot versions occasionally contain non-string garbage in this
// array; decoding drops anything that is not a plain string.
type RecipientList []string

// UnmarshalJSON keeps only well-formed string entries.
func (r *RecipientList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cleaned := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}

	*r = cleaned
	return nil
}

// DonorTier binds a platform role to a cumulative-donation range. A zero
// MaxAmount means the tier is open-ended.
type DonorTier struct {
	RoleID    string  `json:"role_id"`
	Name      string  `json:"name"`
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount,omitempty"`
}

// Contains reports whether total falls inside the tier's range.
func (t DonorTier) Contains(total float64) bool {
	if total < t.MinAmount {
		return false
	}
	return t.MaxAmount <= 0 || total <= t.MaxAmount
}

// FeatureToggles enables or disables reward subsystems per guild.
type FeatureToggles struct {
	Streaks      bool `json:"streaks"`
	Achievements bool `json:"achievements"`
	DonorRoles   bool `json:"donor_roles"`
}

// GuildSettings holds per-guild configuration for the donation pipeline.
type GuildSettings struct {
	AllowedRecipients  RecipientList  `json:"allowed_recipients"`
	AcceptedCurrencies []string       `json:"accepted_currencies"`
	DonorTiers         []DonorTier    `json:"donor_tiers"`
	Features           FeatureToggles `json:"features"`
	AdminRoleID        string         `json:"admin_role_id,omitempty"`
	VIPRoleID          string         `json:"vip_role_id,omitempty"`
}

// TiersByMinAmount returns the donor tiers ordered by ascending MinAmount.
func (s GuildSettings) TiersByMinAmount() []DonorTier {
	tiers := append([]DonorTier(nil), s.DonorTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinAmount < tiers[j].MinAmount })
	return tiers
}

// GuildState is the full per-guild document owned by the store boundary.
type GuildState struct {
	GuildID   string           `json:"guild_id"`
	Users     map[string]*User `json:"users"`
	Draws     map[string]*Draw `json:"draws"`
	Settings  GuildSettings    `json:"settings"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewGuildState returns an empty document for the guild with sane feature
// defaults.
func NewGuildState(guildID string) *GuildState {
	return &GuildState{
		GuildID: guildID,
		Users:   make(map[string]*User),
		Draws:   make(map[string]*Draw),
		Settings: GuildSettings{
			Features: FeatureToggles{Streaks: true, Achievements: true, DonorRoles: true},
		},
	}
}

// UserByID returns the user record, creating it lazily when missing.
func (g *GuildState) UserByID(id string, now time.Time) *User {
	if g.Users == nil {
		g.Users = make(map[string]*User)
	}
	u, ok := g.Users[id]
	if !ok {
		u = NewUser(id, now)
		g.Users[id] = u
	}
	if u.Entries == nil {
		u.Entries = make(map[string]int)
	}
	return u
}

// ActiveDraws returns active draws ordered by id so that allocation across
// multiple draws is deterministic.
func (g *GuildState) ActiveDraws() []*Draw {
	draws := make([]*Draw, 0, len(g.Draws))
	for _, d := range g.Draws {
		if d != nil && d.Active {
			draws = append(draws, d)
		}
	}
	sort.Slice(draws, func(i, j int) bool { return draws[i].ID < draws[j].ID })
	return draws
}
