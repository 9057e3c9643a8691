package retrieval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"threadpack/internal/model"
	"threadpack/internal/topics"
)

const (
	// DefaultK is the evidence pack size when none is given.
	DefaultK = 60
	// SeedBonus is added to threads the topic index lists as representative.
	SeedBonus = 5.0
	maxTopics = 3
)

// Source yields threads until io.EOF.
type Source interface {
	Next() (model.Thread, error)
}

// Plan is the query-time state derived before the corpus pass.
type Plan struct {
	Query         string
	Keywords      []string
	Topics        []TopicMatch
	TopicKeywords []string
	SeedIDs       map[string]struct{}
}

// NewPlan extracts the query keywords and gathers keywords and seed threads
// from the three best matching topics.
func NewPlan(query string, ix *topics.Index) Plan {
	p := Plan{
		Query:    query,
		Keywords: ExtractKeywords(query),
		SeedIDs:  map[string]struct{}{},
	}
	matches := MatchTopics(p.Keywords, ix)
	if len(matches) > maxTopics {
		matches = matches[:maxTopics]
	}
	p.Topics = matches

	seenKW := map[string]struct{}{}
	for _, m := range matches {
		t, ok := ix.Get(m.Name)
		if !ok {
			continue
		}
		for _, kw := range t.Keywords {
			if _, dup := seenKW[kw]; dup {
				continue
			}
			seenKW[kw] = struct{}{}
			p.TopicKeywords = append(p.TopicKeywords, kw)
		}
		for _, id := range t.TopThreadIDs {
			p.SeedIDs[id] = struct{}{}
		}
	}
	return p
}

// Seeded reports whether id was listed by one of the plan's topics.
func (p Plan) Seeded(id string) bool {
	_, ok := p.SeedIDs[id]
	return ok
}

// Rank streams src once and returns the k best threads with a positive score.
// Ties keep stream order. k <= 0 returns nothing.
func (p Plan) Rank(ctx context.Context, src Source, k int) ([]model.Scored, error) {
	scorer := NewScorer(p.Keywords, p.TopicKeywords)
	var (
		candidates []model.Scored
		processed  int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		processed++

		score, matched := scorer.Score(t)
		if p.Seeded(t.ID()) {
			score += SeedBonus
		}
		if score > 0 {
			candidates = append(candidates, model.Scored{Thread: t, Score: score, Matched: matched})
		}
		if processed%2000 == 0 {
			slog.Debug("retrieval: scoring", "processed", processed, "relevant", len(candidates))
		}
	}
	slog.Info("retrieval: corpus scored", "processed", processed, "relevant", len(candidates))

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if k <= 0 {
		return []model.Scored{}, nil
	}
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Retrieve builds the plan for query against ix and ranks src with it.
func Retrieve(ctx context.Context, src Source, ix *topics.Index, query string, k int) ([]model.Scored, error) {
	p := NewPlan(query, ix)
	slog.Info("retrieval: plan",
		"keywords", p.Keywords,
		"topics", p.Topics,
		"topic_keywords", len(p.TopicKeywords),
		"seed_ids", len(p.SeedIDs),
	)
	return p.Rank(ctx, src, k)
}
