package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

func TestRecipientAllowed(t *testing.T) {
	testCases := []struct {
		name      string
		recipient string
		allowed   []string
		expected  bool
	}{
		{
			name:      "exact match after cleaning",
			recipient: "<@bob>",
			allowed:   []string{"bob"},
			expected:  true,
		},
		{
			name:      "case insensitive",
			recipient: "BOB",
			allowed:   []string{"bob"},
			expected:  true,
		},
		{
			name:      "allowed entry contained in recipient",
			recipient: "bobby",
			allowed:   []string{"bob"},
			expected:  true,
		},
		{
			name:      "recipient contained in allowed entry",
			recipient: "bob",
			allowed:   []string{"bobby"},
			expected:  true,
		},
		{
			name:      "no containment either way",
			recipient: "alice",
			allowed:   []string{"bob"},
			expected:  false,
		},
		{
			name:      "empty recipient never matches",
			recipient: "",
			allowed:   []string{"bob"},
			expected:  false,
		},
		{
			name:      "empty allow-list",
			recipient: "bob",
			allowed:   nil,
			expected:  false,
		},
		{
			name:      "markup stripped from both sides",
			recipient: "**bob**",
			allowed:   []string{"@bob"},
			expected:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RecipientAllowed(tc.recipient, tc.allowed))
		})
	}
}

func TestCurrencyAccepted(t *testing.T) {
	assert.True(t, CurrencyAccepted("ltc", nil), "default set applies when unconfigured")
	assert.True(t, CurrencyAccepted("LTC", []string{"LTC", "BTC"}))
	assert.False(t, CurrencyAccepted("SHIB", nil))
	assert.False(t, CurrencyAccepted("LTC", []string{"BTC"}), "configured list overrides the default set")
}

func TestEligible(t *testing.T) {
	settings := domain.GuildSettings{
		AllowedRecipients:  domain.RecipientList{"bob"},
		AcceptedCurrencies: []string{"LTC"},
	}

	assert.True(t, Eligible("<@bob>", "LTC", settings))
	assert.False(t, Eligible("alice", "LTC", settings), "recipient not on allow-list")
	assert.False(t, Eligible("<@bob>", "BTC", settings), "currency not accepted")
}
