// Package pricing values donations in USD, preferring an amount embedded in
// the source message and falling back to external price providers in
// priority order.
package pricing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tipraffle/tipraffle-bot/pkg/metrics"
)

// ErrUnavailable is returned when neither the message text nor any provider
// could produce a USD value. The caller must abandon the donation without
// mutating state.
var ErrUnavailable = errors.New("pricing: no source could value the donation")

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider maps a currency symbol to a USD unit price. Failures are local to
// the provider and never abort resolution.
type Provider interface {
	Name() string
	USDPrice(ctx context.Context, symbol string) (float64, error)
}

// DefaultTimeout bounds each individual provider call.
const DefaultTimeout = 5 * time.Second

// Resolver runs the embedded-price extraction and the provider chain.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	log       *slog.Logger
}

// NewResolver builds a Resolver consulting providers in the given order.
func NewResolver(providers []Provider, timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{providers: providers, timeout: timeout, log: log}
}

var embeddedPriceRe = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?)`)

// ExtractEmbeddedUSD pulls a "$amount" figure out of the message text. Tip
// announcements usually state the already-converted total, which is treated
// as authoritative when present.
func ExtractEmbeddedUSD(text string) (float64, bool) {
	match := embeddedPriceRe.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// ResolveUSD values qty units of symbol in USD. The embedded price
// short-circuits the provider chain; otherwise providers are consulted in
// priority order and the first positive price wins. Each attempt is one-shot:
// no caching and no retries.
func (r *Resolver) ResolveUSD(ctx context.Context, rawText, symbol string, qty float64) (float64, error) {
	if usd, ok := ExtractEmbeddedUSD(rawText); ok {
		metrics.RecordPriceLookup("embedded", "ok")
		return usd, nil
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, p := range r.providers {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		price, err := p.USDPrice(callCtx, symbol)
		cancel()

		if err != nil {
			metrics.RecordPriceLookup(p.Name(), "error")
			r.log.Warn("price provider failed",
				slog.String("provider", p.Name()),
				slog.String("symbol", symbol),
				slog.Any("error", err),
			)
			continue
		}
		if price <= 0 {
			metrics.RecordPriceLookup(p.Name(), "invalid")
			continue
		}

		metrics.RecordPriceLookup(p.Name(), "ok")
		return price * qty, nil
	}

	return 0, ErrUnavailable
}
