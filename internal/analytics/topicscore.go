package analytics

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"threadpack/internal/topics"
)

// TopicThreads is how many representative threads a topic keeps.
const TopicThreads = 50

// TopicScorer counts topic keyword hits. An Aho-Corasick pass over all
// keywords finds the topics present in a text; only those are counted.
type TopicScorer struct {
	defs     []topics.Definition
	lowered  [][]string
	keywords []string
	kwTopics [][]int
	matcher  *ahocorasick.Matcher
}

// NewTopicScorer indexes the keywords of defs.
func NewTopicScorer(defs []topics.Definition) *TopicScorer {
	s := &TopicScorer{defs: defs, lowered: make([][]string, len(defs))}
	index := map[string]int{}
	for ti, d := range defs {
		for _, kw := range d.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			s.lowered[ti] = append(s.lowered[ti], kw)
			i, ok := index[kw]
			if !ok {
				i = len(s.keywords)
				index[kw] = i
				s.keywords = append(s.keywords, kw)
				s.kwTopics = append(s.kwTopics, nil)
			}
			if n := len(s.kwTopics[i]); n == 0 || s.kwTopics[i][n-1] != ti {
				s.kwTopics[i] = append(s.kwTopics[i], ti)
			}
		}
	}
	if len(s.keywords) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(s.keywords)
	}
	return s
}

// Scores returns the total keyword hits per topic, indexed like the
// definitions. Topics with no hit score 0.
func (s *TopicScorer) Scores(text string) []int {
	scores := make([]int, len(s.defs))
	if s.matcher == nil || text == "" {
		return scores
	}
	lower := strings.ToLower(text)
	present := make([]bool, len(s.defs))
	for _, hit := range s.matcher.Match([]byte(lower)) {
		if hit < 0 || hit >= len(s.kwTopics) {
			continue
		}
		for _, ti := range s.kwTopics[hit] {
			present[ti] = true
		}
	}
	for ti, ok := range present {
		if !ok {
			continue
		}
		for _, kw := range s.lowered[ti] {
			scores[ti] += strings.Count(lower, kw)
		}
	}
	return scores
}

// TopicHit is a thread that mentions a topic.
type TopicHit struct {
	ThreadID   string
	URL        string
	Score      int
	Engagement int
}

func (h TopicHit) rank() float64 {
	return float64(h.Score)*0.7 + float64(h.Engagement)*0.3
}

// TopHits orders hits by 0.7*score + 0.3*engagement, keeping the first n.
// Equal ranks keep corpus order.
func TopHits(hits []TopicHit, n int) []TopicHit {
	out := append([]TopicHit(nil), hits...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].rank() > out[j].rank() })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
