package draw

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timeNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func activeDraw(id string, minAmount float64) *domain.Draw {
	return &domain.Draw{
		ID:        id,
		MinAmount: minAmount,
		Active:    true,
		Entries:   make(map[string]int),
	}
}

func TestAllocator_Allocate_FloorDivision(t *testing.T) {
	a := NewAllocator(testLogger())
	user := domain.NewUser("u1", timeNow())
	d := activeDraw("d1", 5)

	grants := a.Allocate(user, 10, []*domain.Draw{d}, Context{})

	assert.Equal(t, map[string]int{"d1": 2}, grants)
	assert.Equal(t, 2, d.Entries["u1"])
	assert.Equal(t, 2, user.Entries["d1"])
}

func TestAllocator_Allocate_BelowMinimum(t *testing.T) {
	a := NewAllocator(testLogger())
	user := domain.NewUser("u1", timeNow())
	d := activeDraw("d1", 5)

	grants := a.Allocate(user, 4.99, []*domain.Draw{d}, Context{})

	assert.Empty(t, grants)
	assert.Empty(t, d.Entries)
	assert.Empty(t, user.Entries)
}

func TestAllocator_Allocate_CapacityClamp(t *testing.T) {
	a := NewAllocator(testLogger())
	user := domain.NewUser("u1", timeNow())
	d := activeDraw("d1", 1)
	d.MaxEntries = 10
	d.Entries["other"] = 7

	grants := a.Allocate(user, 100, []*domain.Draw{d}, Context{})

	assert.Equal(t, map[string]int{"d1": 3}, grants, "grant is clamped to remaining capacity")
	assert.Equal(t, 10, d.TotalEntries())
}

func TestAllocator_Allocate_FullDrawGrantsNothing(t *testing.T) {
	a := NewAllocator(testLogger())
	user := domain.NewUser("u1", timeNow())
	d := activeDraw("d1", 1)
	d.MaxEntries = 5
	d.Entries["other"] = 5

	grants := a.Allocate(user, 100, []*domain.Draw{d}, Context{})

	assert.Empty(t, grants)
	assert.Empty(t, user.Entries)
}

func TestAllocator_Allocate_Gating(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(d *domain.Draw)
		uctx     Context
		usd      float64
		expected bool
	}{
		{
			name:     "inactive draw skipped",
			mutate:   func(d *domain.Draw) { d.Active = false },
			usd:      10,
			expected: false,
		},
		{
			name:     "zero minimum treated as misconfigured",
			mutate:   func(d *domain.Draw) { d.MinAmount = 0 },
			usd:      10,
			expected: false,
		},
		{
			name:     "above maximum amount skipped",
			mutate:   func(d *domain.Draw) { d.MaxAmount = 20 },
			usd:      25,
			expected: false,
		},
		{
			name:     "manual-only excluded from automatic allocation",
			mutate:   func(d *domain.Draw) { d.ManualOnly = true },
			usd:      10,
			expected: false,
		},
		{
			name:     "vip-only without vip role",
			mutate:   func(d *domain.Draw) { d.VIPOnly = true },
			usd:      10,
			expected: false,
		},
		{
			name:     "vip-only with vip role",
			mutate:   func(d *domain.Draw) { d.VIPOnly = true },
			uctx:     Context{VIP: true},
			usd:      10,
			expected: true,
		},
		{
			name:     "selected draw mismatch",
			mutate:   func(d *domain.Draw) {},
			uctx:     Context{SelectedDraw: "other"},
			usd:      10,
			expected: false,
		},
		{
			name:     "selected draw auto matches everything",
			mutate:   func(d *domain.Draw) {},
			uctx:     Context{SelectedDraw: domain.SelectedDrawAuto},
			usd:      10,
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAllocator(testLogger())
			user := domain.NewUser("u1", timeNow())
			d := activeDraw("d1", 5)
			tc.mutate(d)

			grants := a.Allocate(user, tc.usd, []*domain.Draw{d}, tc.uctx)

			if tc.expected {
				assert.NotEmpty(t, grants)
			} else {
				assert.Empty(t, grants)
			}
		})
	}
}

func TestAllocator_Allocate_MultipleDraws(t *testing.T) {
	a := NewAllocator(testLogger())
	user := domain.NewUser("u1", timeNow())
	d1 := activeDraw("d1", 5)
	d2 := activeDraw("d2", 10)

	grants := a.Allocate(user, 20, []*domain.Draw{d1, d2}, Context{})

	assert.Equal(t, map[string]int{"d1": 4, "d2": 2}, grants,
		"one donation funds every eligible draw independently")
}
