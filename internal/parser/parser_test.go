package parser

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParser_Parse(t *testing.T) {
	p := New(nil, testLogger())

	testCases := []struct {
		name     string
		text     string
		expected Tip
	}{
		{
			name: "direct mention form",
			text: "<@111> sent <@222> 0.5 LTC (≈ $10.00)",
			expected: Tip{
				Sender:    "<@111>",
				Recipient: "<@222>",
				Amount:    0.5,
				RawAmount: "0.5",
				Currency:  "LTC",
			},
		},
		{
			name: "direct with tipped verb and display names",
			text: "alice tipped bob 2 DOGE",
			expected: Tip{
				Sender:    "alice",
				Recipient: "bob",
				Amount:    2,
				RawAmount: "2",
				Currency:  "DOGE",
			},
		},
		{
			name: "usd annotated form",
			text: "U1 sends @bob $10.00 of LTC ⇒ 0.5 LTC",
			expected: Tip{
				Sender:    "U1",
				Recipient: "@bob",
				Amount:    0.5,
				RawAmount: "0.5",
				Currency:  "LTC",
			},
		},
		{
			name: "usd annotated without recipient",
			text: "U1 sends $10.00 of LTC ⇒ 0.5 LTC",
			expected: Tip{
				Sender:    "U1",
				Amount:    0.5,
				RawAmount: "0.5",
				Currency:  "LTC",
			},
		},
		{
			name: "loose form with trailing recipient",
			text: "U1 sent 0.5 LTC to U2",
			expected: Tip{
				Sender:    "U1",
				Recipient: "U2",
				Amount:    0.5,
				RawAmount: "0.5",
				Currency:  "LTC",
			},
		},
		{
			name: "thousands separator in amount",
			text: "<@111> gave <@222> 1,000 DOGE",
			expected: Tip{
				Sender:    "<@111>",
				Recipient: "<@222>",
				Amount:    1000,
				RawAmount: "1,000",
				Currency:  "DOGE",
			},
		},
		{
			name: "custom emoji and markup stripped before matching",
			text: "<a:coin~spin:123456> **<@111>** sent <@222> 0.5 `LTC`",
			expected: Tip{
				Sender:    "<@111>",
				Recipient: "<@222>",
				Amount:    0.5,
				RawAmount: "0.5",
				Currency:  "LTC",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tip, ok := p.Parse(tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.expected, tip)
		})
	}
}

func TestParser_Parse_NoMatch(t *testing.T) {
	p := New(nil, testLogger())

	testCases := []struct {
		name string
		text string
	}{
		{name: "empty message", text: ""},
		{name: "unrelated chatter", text: "welcome to the server, enjoy your stay"},
		{name: "tip-like without amount", text: "<@111> sent <@222> some LTC"},
		{name: "zero amount", text: "<@111> sent <@222> 0 LTC"},
		{name: "negative-looking amount", text: "<@111> sent <@222> -5 LTC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := p.Parse(tc.text)
			assert.False(t, ok)
		})
	}
}

func TestParser_Parse_FirstMatchWins(t *testing.T) {
	p := New(nil, testLogger())

	// Matches both the direct and the loose template; the direct one is
	// listed first and its capture must win.
	tip, ok := p.Parse("<@111> sent <@222> 5 LTC to <@333>")
	require.True(t, ok)
	assert.Equal(t, "<@222>", tip.Recipient)
}

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
		ok       bool
	}{
		{raw: "0.5", expected: 0.5, ok: true},
		{raw: "1,234.56", expected: 1234.56, ok: true},
		{raw: " 10 ", expected: 10, ok: true},
		{raw: "0", ok: false},
		{raw: "", ok: false},
		{raw: "abc", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			amount, ok := parseAmount(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, amount, 1e-9)
			}
		})
	}
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, "111", CanonicalID("<@111>"))
	assert.Equal(t, "111", CanonicalID("<@!111>"))
	assert.Equal(t, "bob", CanonicalID("@bob"))
	assert.Equal(t, "bob", CanonicalID(" bob "))
}
