package analytics

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	moneyWindow  = 50 // runes either side of a match
	moneySnippet = 100
	minAmount    = 1
	maxAmount    = 9999
)

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*(\d{1,4}(?:\.\d{1,2})?)`),
	regexp.MustCompile(`\$\s*(\d{1,4})\s*[-–—]\s*\$?\s*(\d{1,4})`),
	regexp.MustCompile(`(?i)(\d{1,4})\s*to\s*(\d{1,4})\s*(?:dollars?)?`),
	regexp.MustCompile(`(?i)(\d{1,4})\s*/\s*hr`),
	regexp.MustCompile(`(?i)(\d{1,4})\s+per\s+hour`),
	regexp.MustCompile(`(?i)(\d{1,4})\s+per\s+(?:session|visit)`),
}

type contextTag struct {
	name     string
	keywords []string
}

// moneyTags are checked in this order.
var moneyTags = []contextTag{
	{"eval", []string{"eval", "evaluation", "initial", "new patient", "assessment"}},
	{"followup", []string{"follow up", "follow-up", "followup", "subsequent", "return"}},
	{"session", []string{"session", "visit", "appointment", "treatment"}},
	{"hour", []string{"hour", "hourly", "/hr", "per hour"}},
	{"package", []string{"package", "packages", "bundle"}},
	{"membership", []string{"membership", "monthly", "subscription"}},
	{"cash", []string{"cash", "cash pay", "cash-pay", "out of pocket", "oop"}},
}

// MoneyMatch is one price-like expression found in a text.
type MoneyMatch struct {
	MatchedText string
	Amounts     []float64
	ContextTags []string
	Context     string
}

// ExtractMoney finds price expressions in text. Every pattern is applied on
// its own, so "$150-200" yields both a single-amount and a range match.
func ExtractMoney(text string) []MoneyMatch {
	if text == "" {
		return nil
	}
	var out []MoneyMatch
	for _, re := range moneyPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			var amounts []float64
			for g := 2; g+1 < len(loc); g += 2 {
				if loc[g] < 0 {
					continue
				}
				v, err := strconv.ParseFloat(text[loc[g]:loc[g+1]], 64)
				if err != nil || v < minAmount || v > maxAmount {
					continue
				}
				amounts = append(amounts, v)
			}
			if len(amounts) == 0 {
				continue
			}
			start := runesBefore(text, loc[0], moneyWindow)
			end := runesAfter(text, loc[1], moneyWindow)
			ctx := text[start:end]
			out = append(out, MoneyMatch{
				MatchedText: strings.ToLower(text[loc[0]:loc[1]]),
				Amounts:     amounts,
				ContextTags: contextTags(strings.ToLower(ctx)),
				Context:     Snippet(ctx, moneySnippet),
			})
		}
	}
	return out
}

func contextTags(lower string) []string {
	var tags []string
	for _, t := range moneyTags {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, t.name)
				break
			}
		}
	}
	return tags
}

// FormatAmounts renders amounts as "150|200".
func FormatAmounts(amounts []float64) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = strconv.FormatFloat(a, 'f', -1, 64)
	}
	return strings.Join(parts, "|")
}
