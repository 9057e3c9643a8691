// Package retrieval ranks corpus threads against a free-text query, seeded by
// the topic index.
package retrieval

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`\b[a-zA-Z0-9]+\b`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but is are was were be been being have has had do does did
		will would could should may might must shall can to of in for on with at by from
		as into through during before after above below it its this that these those
		what which who whom whose when where why how all each every both few more most
		other some such no nor not only own same so than too very just about any
		worth get getting`) {
		stopWords[w] = struct{}{}
	}
}

// ExtractKeywords lowercases the query and returns its alphanumeric tokens that
// are longer than two characters and not stop words. Order and repeats are kept.
func ExtractKeywords(query string) []string {
	tokens := tokenRe.FindAllString(strings.ToLower(query), -1)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) <= 2 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

