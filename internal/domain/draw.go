package domain

// Draw is a lottery-style reward pool with an entry ledger and eligibility
// rules. A zero MaxAmount or MaxEntries means unbounded.
type Draw struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Reward     string         `json:"reward"`
	MinAmount  float64        `json:"min_amount"` // USD per entry unit, must be > 0
	MaxAmount  float64        `json:"max_amount,omitempty"`
	MaxEntries int            `json:"max_entries,omitempty"`
	VIPOnly    bool           `json:"vip_only"`
	ManualOnly bool           `json:"manual_only"` // excluded from automatic allocation
	Active     bool           `json:"active"`
	Entries    map[string]int `json:"entries"` // user id -> entry count
	Winner     string         `json:"winner,omitempty"`
}

// TotalEntries returns the sum of all entries currently in the draw ledger.
func (d *Draw) TotalEntries() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, n := range d.Entries {
		total += n
	}
	return total
}

// Remaining reports how many entries may still be granted before the draw
// reaches capacity. It returns -1 when the draw is unbounded.
func (d *Draw) Remaining() int {
	if d == nil {
		return 0
	}
	if d.MaxEntries <= 0 {
		return -1
	}
	left := d.MaxEntries - d.TotalEntries()
	if left < 0 {
		return 0
	}
	return left
}

// AddEntries records n entries for the user in the draw ledger.
func (d *Draw) AddEntries(userID string, n int) {
	if d == nil || n <= 0 {
		return
	}
	if d.Entries == nil {
		d.Entries = make(map[string]int)
	}
	d.Entries[userID] += n
}
