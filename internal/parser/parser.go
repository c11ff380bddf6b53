package parser

import (
	"log/slog"
	"regexp"
)

const (
	token    = `(?:<@!?\d+>|@?[\w.\-]+)`
	amount   = `(?P<amount>\d[\d,]*(?:\.\d+)?)`
	currency = `(?P<currency>[A-Za-z]{2,10})`
)

// DefaultGrammars is the ordered template list, most structured first. The
// first grammar that matches wins; results are never merged across grammars.
func DefaultGrammars() []Grammar {
	return []Grammar{
		// "<@111> sent <@222> 0.5 LTC (≈ $10.00)"
		&regexpGrammar{
			name: "direct",
			re: regexp.MustCompile(`(?P<sender>` + token + `)\s+(?:sent|tipped|gave)\s+(?P<recipient>` + token + `)\s+` +
				amount + `\s*` + currency + `\b`),
		},
		// "U1 sends $10.00 of LTC ⇒ 0.5 LTC" with an optional recipient token
		&regexpGrammar{
			name: "usd-annotated",
			re: regexp.MustCompile(`(?P<sender>` + token + `)\s+sends?\s+(?:(?P<recipient>` + token + `)\s+)?\$[\d,]+(?:\.\d+)?\s+(?:of|in)\s+` +
				currency + `\s*(?:⇒|=>|->)\s*` + amount),
		},
		// "U1 sent 0.5 LTC to U2"
		&regexpGrammar{
			name: "loose",
			re: regexp.MustCompile(`(?P<sender>` + token + `)\s+(?:sent|tipped|gave|donated)\s+` +
				amount + `\s*` + currency + `\s+to\s+(?P<recipient>` + token + `)`),
		},
	}
}

// Parser runs an ordered list of grammars against tipping-bot messages.
type Parser struct {
	grammars []Grammar
	log      *slog.Logger
}

// New builds a Parser. When grammars is nil the default template list is used.
func New(grammars []Grammar, log *slog.Logger) *Parser {
	if grammars == nil {
		grammars = DefaultGrammars()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{grammars: grammars, log: log}
}

// Parse tries each grammar in order against the normalized message. A false
// return is the expected outcome for the tipping bot's unrelated messages,
// not an error.
func (p *Parser) Parse(rawText string) (Tip, bool) {
	text := normalize(rawText)
	if text == "" {
		return Tip{}, false
	}

	for _, g := range p.grammars {
		if tip, ok := g.TryParse(text); ok {
			p.log.Debug("tip message parsed",
				slog.String("grammar", g.Name()),
				slog.String("currency", tip.Currency),
				slog.String("amount", tip.RawAmount),
			)
			return tip, true
		}
	}

	return Tip{}, false
}
