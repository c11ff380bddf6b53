package pricing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProvider struct {
	name  string
	price float64
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) USDPrice(_ context.Context, _ string) (float64, error) {
	s.calls++
	return s.price, s.err
}

func TestExtractEmbeddedUSD(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected float64
		ok       bool
	}{
		{name: "plain dollar amount", text: "U1 sends $10.00 of LTC ⇒ 0.5 LTC", expected: 10, ok: true},
		{name: "thousands separator", text: "worth $1,250.50 today", expected: 1250.50, ok: true},
		{name: "space after dollar sign", text: "≈ $ 3.75", expected: 3.75, ok: true},
		{name: "no dollar figure", text: "0.5 LTC", ok: false},
		{name: "zero amount", text: "$0", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, ok := ExtractEmbeddedUSD(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, value, 1e-9)
			}
		})
	}
}

func TestResolver_ResolveUSD_EmbeddedShortCircuits(t *testing.T) {
	provider := &stubProvider{name: "stub", price: 99}
	r := NewResolver([]Provider{provider}, time.Second, testLogger())

	usd, err := r.ResolveUSD(context.Background(), "U1 sends $10.00 of LTC ⇒ 0.5 LTC", "LTC", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, usd, 1e-9)
	assert.Zero(t, provider.calls, "embedded price must bypass the provider chain")
}

func TestResolver_ResolveUSD_ProviderChain(t *testing.T) {
	failing := &stubProvider{name: "first", err: errors.New("boom")}
	invalid := &stubProvider{name: "second", price: 0}
	working := &stubProvider{name: "third", price: 20}
	r := NewResolver([]Provider{failing, invalid, working}, time.Second, testLogger())

	usd, err := r.ResolveUSD(context.Background(), "0.5 LTC incoming", "ltc", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, usd, 1e-9, "unit price times quantity")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, invalid.calls)
	assert.Equal(t, 1, working.calls)
}

func TestResolver_ResolveUSD_AllProvidersFail(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", err: errors.New("also down")}
	r := NewResolver([]Provider{first, second}, time.Second, testLogger())

	_, err := r.ResolveUSD(context.Background(), "no embedded figure", "LTC", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}
