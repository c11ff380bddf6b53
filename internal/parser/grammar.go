// Package parser extracts donation events from raw tipping-bot messages.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tip is a successfully parsed donation announcement. Sender and Recipient
// are raw platform tokens: either a numeric user id, a mention wrapper around
// one, or a display name.
type Tip struct {
	Sender    string
	Recipient string
	Amount    float64
	RawAmount string
	Currency  string
}

// Grammar is a single message template. TryParse reports false when the text
// does not match; grammars never return errors.
type Grammar interface {
	Name() string
	TryParse(text string) (Tip, bool)
}

type regexpGrammar struct {
	name string
	re   *regexp.Regexp
}

func (g *regexpGrammar) Name() string { return g.name }

func (g *regexpGrammar) TryParse(text string) (Tip, bool) {
	match := g.re.FindStringSubmatch(text)
	if match == nil {
		return Tip{}, false
	}

	tip := Tip{}
	for i, name := range g.re.SubexpNames() {
		if i == 0 || i >= len(match) {
			continue
		}
		switch name {
		case "sender":
			tip.Sender = match[i]
		case "recipient":
			tip.Recipient = match[i]
		case "amount":
			tip.RawAmount = match[i]
		case "currency":
			tip.Currency = strings.ToUpper(match[i])
		}
	}

	amount, ok := parseAmount(tip.RawAmount)
	if !ok {
		return Tip{}, false
	}
	tip.Amount = amount

	if tip.Sender == "" || tip.Currency == "" {
		return Tip{}, false
	}

	return tip, true
}

// parseAmount accepts decimal strings with optional thousands separators.
// Anything non-positive or non-finite is rejected.
func parseAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0, false
	}
	return amount, true
}

var (
	customEmojiRe = regexp.MustCompile(`<a?:[\w~]+:\d+>`)
	markupRe      = regexp.MustCompile("[*_`]+")
	spaceRe       = regexp.MustCompile(`\s+`)
)

// normalize strips decorative emoji tokens and inline markup so that grammar
// patterns only have to describe the tip template itself.
func normalize(text string) string {
	text = customEmojiRe.ReplaceAllString(text, " ")
	text = markupRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CanonicalID unwraps mention decoration from a sender or recipient token,
// returning the bare user id or display name.
func CanonicalID(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "<@!")
	token = strings.TrimPrefix(token, "<@")
	token = strings.TrimSuffix(token, ">")
	token = strings.TrimPrefix(token, "@")
	return token
}
