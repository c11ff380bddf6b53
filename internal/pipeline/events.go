package pipeline

// Event is a structured notification emitted after a unit of work commits.
// Rendering is the platform layer's concern.
type Event interface {
	Kind() string
}

// DonationProcessed announces a recognized, valued, and persisted donation.
type DonationProcessed struct {
	UserID         string
	USD            float64
	Currency       string
	OriginalAmount float64
	Grants         map[string]int // draw id -> entries granted, zero grants omitted
}

func (DonationProcessed) Kind() string { return "donation_processed" }

// RoleChanged announces a donor tier transition.
type RoleChanged struct {
	UserID  string
	Granted string
	Revoked []string
	Tier    string
}

func (RoleChanged) Kind() string { return "role_changed" }

// AchievementUnlocked announces a newly granted achievement.
type AchievementUnlocked struct {
	UserID      string
	Key         string
	Name        string
	Description string
}

func (AchievementUnlocked) Kind() string { return "achievement_unlocked" }

// WinnerDrawn announces a draw closure.
type WinnerDrawn struct {
	DrawID       string
	DrawName     string
	Reward       string
	UserID       string
	Entries      int
	TotalEntries int
}

func (WinnerDrawn) Kind() string { return "winner_drawn" }

// Sink receives events for rendering. Implementations must not block the
// pipeline on slow deliveries.
type Sink interface {
	Notify(guildID string, event Event)
}

// NoopSink discards events.
type NoopSink struct{}

// Notify implements Sink.
func (NoopSink) Notify(string, Event) {}
