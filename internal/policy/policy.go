// Package policy decides whether a parsed tip is eligible for processing.
package policy

import (
	"strings"

	"github.com/tipraffle/tipraffle-bot/internal/domain"
)

// DefaultCurrencies is the accepted symbol set used when a guild has not
// configured its own list.
var DefaultCurrencies = []string{
	"BTC", "LTC", "ETH", "BCH", "DOGE", "DASH", "XRP", "TRX",
	"SOL", "BNB", "MATIC", "USDT", "USDC",
}

// cleanToken strips mention and markup decoration around a recipient token
// and lowercases the remainder for comparison.
func cleanToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.Trim(token, "<>")
	token = strings.TrimPrefix(token, "@!")
	token = strings.TrimPrefix(token, "@")
	token = strings.Trim(token, "*_`~")
	return strings.ToLower(strings.TrimSpace(token))
}

// RecipientAllowed reports whether the recipient matches an allow-list entry.
// Both sides are compared after decoration stripping, case-insensitively, and
// a match succeeds on equality or substring containment in either direction.
// The containment rule is deliberate: allow-lists hold display names while
// messages may carry numeric mentions, nicknames, or truncated handles.
func RecipientAllowed(recipient string, allowed []string) bool {
	cleaned := cleanToken(recipient)
	if cleaned == "" {
		return false
	}

	for _, entry := range allowed {
		want := cleanToken(entry)
		if want == "" {
			continue
		}
		if cleaned == want || strings.Contains(cleaned, want) || strings.Contains(want, cleaned) {
			return true
		}
	}

	return false
}

// CurrencyAccepted reports whether the symbol is in the accepted set. An
// unconfigured guild falls back to DefaultCurrencies.
func CurrencyAccepted(symbol string, accepted []string) bool {
	if len(accepted) == 0 {
		accepted = DefaultCurrencies
	}
	for _, s := range accepted {
		if strings.EqualFold(symbol, s) {
			return true
		}
	}
	return false
}

// Eligible combines the recipient and currency checks against guild settings.
func Eligible(recipient, currency string, settings domain.GuildSettings) bool {
	return RecipientAllowed(recipient, settings.AllowedRecipients) &&
		CurrencyAccepted(currency, settings.AcceptedCurrencies)
}
