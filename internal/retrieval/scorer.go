package retrieval

import (
	"math"
	"regexp"
	"strings"

	"threadpack/internal/model"
)

const (
	queryWeight     = 2.0
	topicWeight     = 1.0
	engagementScale = 0.5
	// scoredComments bounds how many comments contribute to a thread's text.
	scoredComments = 10
)

// Scorer scores threads against a fixed pair of keyword groups. Build it once
// per query; patterns are compiled up front.
type Scorer struct {
	query []queryTerm
	topic []string
}

type queryTerm struct {
	keyword string
	re      *regexp.Regexp
}

// NewScorer prepares query keywords for whole-word matching and topic keywords
// for substring matching. Repeated keywords are scored once.
func NewScorer(queryKeywords, topicKeywords []string) *Scorer {
	s := &Scorer{}
	seen := make(map[string]struct{}, len(queryKeywords))
	for _, kw := range queryKeywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		s.query = append(s.query, queryTerm{
			keyword: kw,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	seen = make(map[string]struct{}, len(topicKeywords))
	for _, kw := range topicKeywords {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		s.topic = append(s.topic, kw)
	}
	return s
}

// Score returns the thread's relevance and the keywords that matched, query
// keywords first. The result is never negative.
func (s *Scorer) Score(t model.Thread) (float64, []string) {
	full := FullText(t)

	var score float64
	var matched []string
	for _, q := range s.query {
		if c := len(q.re.FindAllStringIndex(full, -1)); c > 0 {
			score += float64(c) * queryWeight
			matched = appendUnique(matched, q.keyword)
		}
	}
	for _, kw := range s.topic {
		if c := strings.Count(full, strings.ToLower(kw)); c > 0 {
			score += float64(c) * topicWeight
			matched = appendUnique(matched, kw)
		}
	}
	score += EngagementBoost(t.Metrics.Engagement())
	return score, matched
}

// Score is a one-shot form of Scorer.Score.
func Score(t model.Thread, queryKeywords, topicKeywords []string) (float64, []string) {
	return NewScorer(queryKeywords, topicKeywords).Score(t)
}

// FullText is the lowercased post body followed by its first ten comments.
func FullText(t model.Thread) string {
	return strings.ToLower(t.Text()) + " " + strings.ToLower(strings.Join(t.CommentTexts(scoredComments), " "))
}

// EngagementBoost log-compresses engagement so it cannot dominate lexical hits.
func EngagementBoost(engagement int) float64 {
	if engagement <= 0 {
		return 0
	}
	return math.Log1p(float64(engagement)) * engagementScale
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
