package retrieval

import (
	"sort"
	"strings"

	"threadpack/internal/topics"
)

// TopicMatch is a topic and how many query keywords overlap its keywords.
type TopicMatch struct {
	Name    string
	Overlap int
}

// MatchTopics ranks topics by keyword overlap. A query keyword overlaps a
// topic when it is a substring of any of the topic's keyword phrases. Topics
// without overlap are dropped; equal overlaps keep index order.
func MatchTopics(queryKeywords []string, ix *topics.Index) []TopicMatch {
	if ix == nil {
		return nil
	}
	var out []TopicMatch
	for _, t := range ix.Topics {
		phrases := make([]string, len(t.Keywords))
		for i, kw := range t.Keywords {
			phrases[i] = strings.ToLower(kw)
		}
		overlap := 0
		for _, q := range queryKeywords {
			for _, p := range phrases {
				if strings.Contains(p, q) {
					overlap++
					break
				}
			}
		}
		if overlap > 0 {
			out = append(out, TopicMatch{Name: t.Name, Overlap: overlap})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Overlap > out[j].Overlap })
	return out
}
