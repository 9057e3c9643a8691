package retrieval

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadpack/internal/corpus"
	"threadpack/internal/model"
	"threadpack/internal/topics"
)

type sliceSource struct {
	threads []model.Thread
	pos     int
}

func (s *sliceSource) Next() (model.Thread, error) {
	if s.pos >= len(s.threads) {
		return model.Thread{}, io.EOF
	}
	t := s.threads[s.pos]
	s.pos++
	return t, nil
}

func src(threads ...model.Thread) *sliceSource { return &sliceSource{threads: threads} }

func thread(id, text string, reactions int, comments ...string) model.Thread {
	t := model.Thread{ThreadID: id, URL: "https://example.com/" + id, TextClean: text}
	t.Metrics.Reactions = reactions
	for i, c := range comments {
		t.Comments = append(t.Comments, model.Comment{CommentID: id + "_c" + string(rune('0'+i)), ThreadID: id, TextClean: c})
	}
	return t
}

func builtinIndex(t *testing.T) *topics.Index {
	t.Helper()
	defs, err := topics.Definitions()
	require.NoError(t, err)
	return topics.NewIndex(defs)
}

func TestExtractKeywordsDropsStopWords(t *testing.T) {
	got := ExtractKeywords("what is the best course for dry needling")
	assert.Equal(t, []string{"best", "course", "dry", "needling"}, got)
}

func TestExtractKeywordsEdgeCases(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("is it worth getting to the"))
	assert.Equal(t, []string{"iastm", "iastm", "2024"}, ExtractKeywords("IASTM, iastm? in 2024 ok"))
	assert.Equal(t, []string{"cash", "pay", "200"}, ExtractKeywords("cash-pay $200/hr"))
}

func TestExtractKeywordsIdempotent(t *testing.T) {
	q := "CEU courses certifications worth it"
	first := ExtractKeywords(q)
	assert.Equal(t, first, ExtractKeywords(q))
	assert.Equal(t, first, ExtractKeywords(strings.Join(first, " ")))
	assert.Empty(t, ExtractKeywords("Worth getting"))
}

func TestScoreWeights(t *testing.T) {
	th := thread("t", "Dry needling and more dry needling", 0, "needling again")
	score, matched := Score(th, []string{"needling", "dry"}, []string{"dry needling", "Needling"})

	// query: needling x3 *2 + dry x2 *2 = 10; topic: "dry needling" x2 + "needling" x3 = 5
	assert.Equal(t, 15.0, score)
	assert.Equal(t, []string{"needling", "dry", "dry needling", "Needling"}, matched)
}

func TestScoreWholeWordVersusSubstring(t *testing.T) {
	th := thread("t", "costs costly cost", 0)
	score, matched := Score(th, []string{"cost"}, nil)
	assert.Equal(t, 2.0, score)
	assert.Equal(t, []string{"cost"}, matched)

	score, _ = Score(th, nil, []string{"cost"})
	assert.Equal(t, 3.0, score)
}

func TestScoreDeduplicatesMatched(t *testing.T) {
	th := thread("t", "pricing pricing", 0)
	score, matched := Score(th, []string{"pricing", "pricing"}, []string{"pricing"})
	assert.Equal(t, 6.0, score)
	assert.Equal(t, []string{"pricing"}, matched)
}

func TestScoreOnlyFirstTenComments(t *testing.T) {
	var comments []string
	for i := 0; i < 10; i++ {
		comments = append(comments, "nothing here")
	}
	comments = append(comments, "needling")
	score, matched := Score(thread("t", "", 0, comments...), []string{"needling"}, nil)
	assert.Zero(t, score)
	assert.Empty(t, matched)
}

func TestScoreFallsBackToRawText(t *testing.T) {
	th := model.Thread{ThreadID: "t", TextRaw: "Needling"}
	score, _ := Score(th, []string{"needling"}, nil)
	assert.Equal(t, 2.0, score)
}

func TestScoreNonNegativeAndEngagementMonotonic(t *testing.T) {
	base := thread("t", "cupping and graston", 0)
	prev, _ := Score(base, []string{"cupping"}, []string{"graston"})
	assert.GreaterOrEqual(t, prev, 0.0)

	empty, _ := Score(model.Thread{}, []string{"x"}, []string{"y"})
	assert.Zero(t, empty)

	for i := 1; i <= 20; i++ {
		th := base
		th.Metrics = model.Metrics{Reactions: i, Comments: i / 2, Shares: i / 3}
		s, _ := Score(th, []string{"cupping"}, []string{"graston"})
		assert.GreaterOrEqual(t, s, prev)
		prev = s
	}
}

func TestEngagementBoost(t *testing.T) {
	assert.Zero(t, EngagementBoost(0))
	assert.Zero(t, EngagementBoost(-3))
	assert.InDelta(t, 1.1989476, EngagementBoost(10), 1e-6)
}

func TestMatchTopicsOverlap(t *testing.T) {
	ix := &topics.Index{Topics: []topics.Topic{
		{Name: "pricing", Keywords: []string{"cost", "rate"}},
		{Name: "needling", Keywords: []string{"Dry Needling", "iastm"}},
		{Name: "certs", Keywords: []string{"certification", "dry needling"}},
	}}
	got := MatchTopics([]string{"needling", "cost", "needling"}, ix)
	require.Len(t, got, 3)
	assert.Equal(t, TopicMatch{Name: "needling", Overlap: 2}, got[0])
	assert.Equal(t, TopicMatch{Name: "certs", Overlap: 2}, got[1])
	assert.Equal(t, TopicMatch{Name: "pricing", Overlap: 1}, got[2])

	assert.Empty(t, MatchTopics([]string{"zebra"}, ix))
	assert.Empty(t, MatchTopics(nil, ix))
	assert.Empty(t, MatchTopics([]string{"cost"}, nil))
}

func TestPlanUsesTopThreeTopics(t *testing.T) {
	ix := &topics.Index{Topics: []topics.Topic{
		{Name: "a", Keywords: []string{"alpha"}, TopThreadIDs: []string{"t1"}},
		{Name: "b", Keywords: []string{"alpha beta", "alpha"}, TopThreadIDs: []string{"t2", "t1"}},
		{Name: "c", Keywords: []string{"alpha gamma"}, TopThreadIDs: []string{"t3"}},
		{Name: "d", Keywords: []string{"alpha delta"}, TopThreadIDs: []string{"t4"}},
	}}
	p := NewPlan("alpha", ix)
	require.Len(t, p.Topics, 3)
	assert.Equal(t, []string{"alpha", "alpha beta", "alpha gamma"}, p.TopicKeywords)
	assert.True(t, p.Seeded("t1"))
	assert.True(t, p.Seeded("t3"))
	assert.False(t, p.Seeded("t4"))
}

func TestSeedBonusExact(t *testing.T) {
	ix := &topics.Index{Topics: []topics.Topic{
		{Name: "needling", Keywords: []string{"dry needling"}, TopThreadIDs: []string{"seeded"}},
	}}
	a := thread("seeded", "dry needling works", 7)
	b := thread("plain", "dry needling works", 7)

	ranked, err := Retrieve(context.Background(), src(b, a), ix, "needling", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "seeded", ranked[0].Thread.ID())
	assert.InDelta(t, SeedBonus, ranked[0].Score-ranked[1].Score, 1e-9)
}

func TestSeedBonusAloneSelectsThread(t *testing.T) {
	ix := &topics.Index{Topics: []topics.Topic{
		{Name: "needling", Keywords: []string{"dry needling"}, TopThreadIDs: []string{"quiet"}},
	}}
	ranked, err := Retrieve(context.Background(), src(thread("quiet", "short post", 0)), ix, "needling", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, SeedBonus, ranked[0].Score)
}

func scenarioCorpus() string {
	return strings.Join([]string{
		`{"thread_id":"A","url":"https://x/A","text_clean":"dry needling course cost $200","metrics":{"reactionCount":10}}`,
		`{"thread_id":"B","url":"https://x/B","text_clean":"just a hello post","metrics":{"reactionCount":0}}`,
		`{"thread_id":"C","url":"https://x/C","text_clean":"dry needling certification review","metrics":{"reactionCount":50},"comments":[{"comment_id":"c1","thread_id":"C","text_clean":"worth every penny at $200/session"}]}`,
	}, "\n") + "\n"
}

func TestRetrieveScenario(t *testing.T) {
	ix := builtinIndex(t)
	ranked, err := Retrieve(context.Background(), corpus.NewReader(strings.NewReader(scenarioCorpus())), ix, "dry needling course worth it", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	ids := []string{ranked[0].Thread.ID(), ranked[1].Thread.ID()}
	assert.ElementsMatch(t, []string{"A", "C"}, ids)
	for _, s := range ranked {
		assert.Greater(t, s.Score, 0.0)
	}

	// B carries no signal and is excluded even with room to spare.
	all, err := Retrieve(context.Background(), corpus.NewReader(strings.NewReader(scenarioCorpus())), ix, "dry needling course worth it", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// C's engagement contributes more than A's.
	var a, c model.Scored
	for _, s := range all {
		switch s.Thread.ID() {
		case "A":
			a = s
		case "C":
			c = s
		}
	}
	assert.Greater(t, EngagementBoost(c.Thread.Metrics.Engagement()), EngagementBoost(a.Thread.Metrics.Engagement()))
	assert.Contains(t, c.Matched, "dry needling")
}

func TestRetrieveTopicOverlapSelection(t *testing.T) {
	ix := &topics.Index{Topics: []topics.Topic{
		{Name: "other", Keywords: []string{"billing"}},
		{Name: "iastm_needling", Keywords: []string{"dry needling", "iastm"}},
	}}
	p := NewPlan("best needling approach", ix)
	require.NotEmpty(t, p.Topics)
	assert.Equal(t, "iastm_needling", p.Topics[0].Name)
	assert.GreaterOrEqual(t, p.Topics[0].Overlap, 1)
}

func TestRetrieveTruncationIsPrefix(t *testing.T) {
	var threads []model.Thread
	for i := 0; i < 12; i++ {
		threads = append(threads, thread(string(rune('a'+i)), strings.Repeat("needling ", i%4+1), i%3))
	}
	ix := &topics.Index{}
	full, err := Retrieve(context.Background(), src(threads...), ix, "needling", 100)
	require.NoError(t, err)
	require.Len(t, full, 12)

	for k := 0; k <= 12; k++ {
		part, err := Retrieve(context.Background(), src(threads...), ix, "needling", k)
		require.NoError(t, err)
		require.Len(t, part, k)
		assert.Equal(t, full[:k], part)
	}
	neg, err := Retrieve(context.Background(), src(threads...), ix, "needling", -1)
	require.NoError(t, err)
	assert.Empty(t, neg)
}

func TestRetrieveStableTies(t *testing.T) {
	ranked, err := Retrieve(context.Background(),
		src(thread("first", "iastm", 0), thread("second", "iastm", 0), thread("third", "iastm iastm", 0)),
		&topics.Index{}, "iastm", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "third", ranked[0].Thread.ID())
	assert.Equal(t, "first", ranked[1].Thread.ID())
	assert.Equal(t, "second", ranked[2].Thread.ID())
}

func TestRetrieveDeterministicOutput(t *testing.T) {
	ix := builtinIndex(t)
	run := func() string {
		ranked, err := Retrieve(context.Background(), corpus.NewReader(strings.NewReader(scenarioCorpus())), ix, "dry needling course cost", 60)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, corpus.WriteJSONL(&buf, NewEvidenceRecords(ranked)))
		return buf.String()
	}
	first := run()
	assert.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestRetrieveEmptyQueryNoTopics(t *testing.T) {
	ranked, err := Retrieve(context.Background(),
		src(thread("loud", "hello", 4), thread("quiet", "hello", 0)), &topics.Index{}, "", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "loud", ranked[0].Thread.ID())
}

func TestRetrieveFailsOnMalformedLine(t *testing.T) {
	in := `{"thread_id":"a","text_clean":"needling"}` + "\n{oops\n"
	_, err := Retrieve(context.Background(), corpus.NewReader(strings.NewReader(in)), &topics.Index{}, "needling", 10)
	var me *corpus.MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)
}

func TestRetrieveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retrieve(ctx, src(thread("a", "needling", 0)), &topics.Index{}, "needling", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWhySelected(t *testing.T) {
	assert.Equal(t, "Relevance score: 0.0", WhySelected(nil, 0, 0))
	assert.Equal(t,
		"Matched keywords: a, b, c, d, e; High engagement (11); Relevance score: 12.3",
		WhySelected([]string{"a", "b", "c", "d", "e", "f"}, 11, 12.345))
	assert.Equal(t, "Matched keywords: dry; Relevance score: 2.0", WhySelected([]string{"dry"}, 10, 2))
}

func TestNewEvidenceRecord(t *testing.T) {
	th := thread("t1", "post <body> & more", 12, "one", "", "two", "three", "four", "five", "six")
	th.CreatedAt = "2024-05-01T10:00:00Z"
	rec := NewEvidenceRecord(model.Scored{Thread: th, Score: 3.25, Matched: []string{"body"}})

	assert.Equal(t, "t1", rec.ThreadID)
	assert.Equal(t, "https://example.com/t1", rec.URL)
	assert.Equal(t, "2024-05-01T10:00:00Z", rec.CreatedAt)
	assert.Equal(t, []string{"one", "two", "three", "four"}, rec.CommentsText)
	assert.Equal(t, "Matched keywords: body; High engagement (12); Relevance score: 3.2", rec.WhySelected)

	var buf bytes.Buffer
	require.NoError(t, corpus.WriteJSONL(&buf, []EvidenceRecord{rec}))
	assert.Contains(t, buf.String(), `"post_text":"post <body> & more"`)
	assert.Contains(t, buf.String(), `"metrics":{"reactionCount":12,"commentCount":0,"shareCount":0}`)
}
