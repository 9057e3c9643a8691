package report

import (
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for config-provided
// titles.
//
// Supported variables:
// - {.CurrentDate} => formatted as YYYY-MM-DD (UTC)
// - {.Query} => the evidence query, when there is one
func ExpandVars(s string, now time.Time, query string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	date := now.UTC().Format("2006-01-02")
	out := strings.ReplaceAll(s, "{.CurrentDate}", date)
	out = strings.ReplaceAll(out, "{.Query}", query)
	return out
}
