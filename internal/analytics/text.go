// Package analytics runs the single forward pass over a corpus that feeds the
// pack report: pricing mentions, shared links, named resources, marketing
// candidates, and the per-topic thread ranking behind the topic index.
package analytics

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"threadpack/internal/model"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Snippet collapses whitespace and cuts text to at most max runes, marking
// the cut with "...".
func Snippet(text string, max int) string {
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	if max <= 3 {
		return string([]rune(text)[:max])
	}
	return string([]rune(text)[:max-3]) + "..."
}

// AllText joins the post body with every comment, including empty ones.
func AllText(t model.Thread) string {
	parts := make([]string, 0, len(t.Comments)+1)
	parts = append(parts, t.Text())
	for _, c := range t.Comments {
		parts = append(parts, c.Text())
	}
	return strings.Join(parts, " ")
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// MonthKey returns the YYYY-MM bucket of an ISO timestamp, or "" when it
// cannot be parsed.
func MonthKey(iso string) string {
	if iso == "" {
		return ""
	}
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, iso); err == nil {
			return ts.Format("2006-01")
		}
	}
	return ""
}

// runesBefore steps back n runes from byte offset i; runesAfter steps forward.
func runesBefore(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

func runesAfter(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
