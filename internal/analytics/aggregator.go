package analytics

import (
	"sort"
	"strings"

	"threadpack/internal/model"
	"threadpack/internal/topics"
)

const (
	defaultSnippet = 200
	maxSamples     = 5
	sourceThread   = "thread"
	sourceComment  = "comment"
)

// Output bounds for the ranked tables.
const (
	TopDomains   = 100
	TopMarketing = 500
)

// ThreadSummary is the part of a thread the report keeps after the pass.
type ThreadSummary struct {
	ThreadID  string
	CreatedAt string
	URL       string
	Metrics   model.Metrics
	Comments  int
	Snippet   string
}

// MoneyMention is a price expression with its provenance.
type MoneyMention struct {
	MoneyMatch
	SourceType  string
	ThreadID    string
	CommentID   string
	CreatedAt   string
	URL         string
	TextSnippet string
}

// LinkStat aggregates one canonical URL.
type LinkStat struct {
	URL             string
	Domain          string
	Count           int
	SampleThreadIDs []string
	SampleURLs      []string
	FirstSeen       string
	LastSeen        string
}

// DomainStat rolls links up by domain. Count sums link mentions, Links counts
// distinct URLs.
type DomainStat struct {
	Domain     string
	Count      int
	Links      int
	SampleURLs []string
}

// EntityStat aggregates mentions of one upper-cased entity.
type EntityStat struct {
	Entity          string
	Category        string
	Mentions        int
	Threads         int
	SampleThreadIDs []string
	SampleURLs      []string

	lastThread string
}

// MarketingCandidate is a swipe-file entry.
type MarketingCandidate struct {
	SourceType  string
	ThreadID    string
	CommentID   string
	CreatedAt   string
	URL         string
	Engagement  int
	Tags        []string
	TextSnippet string
	Score       float64
}

// MonthCount is one bucket of a monthly series.
type MonthCount struct {
	Month string
	Count int
}

// Aggregator accumulates corpus statistics one thread at a time.
type Aggregator struct {
	defs   []topics.Definition
	scorer *TopicScorer

	threads   []ThreadSummary
	money     []MoneyMention
	marketing []MarketingCandidate
	reactions []int

	links       map[string]*LinkStat
	linkOrder   []string
	entities    map[string]*EntityStat
	entityOrder []string
	topicHits   [][]TopicHit

	threadsByMonth map[string]int
	moneyByMonth   map[string]int
}

// NewAggregator prepares an aggregation for the given topic definitions.
func NewAggregator(defs []topics.Definition) *Aggregator {
	return &Aggregator{
		defs:           defs,
		scorer:         NewTopicScorer(defs),
		links:          map[string]*LinkStat{},
		entities:       map[string]*EntityStat{},
		topicHits:      make([][]TopicHit, len(defs)),
		threadsByMonth: map[string]int{},
		moneyByMonth:   map[string]int{},
	}
}

func (a *Aggregator) link(u string) *LinkStat {
	if s, ok := a.links[u]; ok {
		return s
	}
	s := &LinkStat{URL: u}
	a.links[u] = s
	a.linkOrder = append(a.linkOrder, u)
	return s
}

func (a *Aggregator) entity(key string) *EntityStat {
	if s, ok := a.entities[key]; ok {
		return s
	}
	s := &EntityStat{Entity: key}
	a.entities[key] = s
	a.entityOrder = append(a.entityOrder, key)
	return s
}

// Add folds one thread into the aggregation.
func (a *Aggregator) Add(t model.Thread) {
	id := t.ID()
	created := t.CreatedAt
	month := MonthKey(created)
	if month != "" {
		a.threadsByMonth[month]++
	}
	eng := t.Metrics.Engagement()
	a.reactions = append(a.reactions, t.Metrics.Reactions)

	post := t.Text()
	full := AllText(t)
	a.threads = append(a.threads, ThreadSummary{
		ThreadID:  id,
		CreatedAt: created,
		URL:       t.URL,
		Metrics:   t.Metrics,
		Comments:  len(t.Comments),
		Snippet:   Snippet(post, defaultSnippet),
	})

	for _, m := range ExtractMoney(post) {
		a.money = append(a.money, MoneyMention{
			MoneyMatch:  m,
			SourceType:  sourceThread,
			ThreadID:    id,
			CreatedAt:   created,
			URL:         t.URL,
			TextSnippet: Snippet(post, defaultSnippet),
		})
		if month != "" {
			a.moneyByMonth[month]++
		}
	}
	for _, c := range t.Comments {
		text := c.Text()
		for _, m := range ExtractMoney(text) {
			a.money = append(a.money, MoneyMention{
				MoneyMatch:  m,
				SourceType:  sourceComment,
				ThreadID:    id,
				CommentID:   c.CommentID,
				CreatedAt:   c.CreatedAt,
				URL:         c.URL,
				TextSnippet: Snippet(text, defaultSnippet),
			})
		}
	}

	for _, u := range ExtractURLs(full) {
		domain := Domain(u)
		if skipDomain(domain) {
			continue
		}
		s := a.link(u)
		s.Count++
		s.Domain = domain
		if len(s.SampleThreadIDs) < maxSamples {
			s.SampleThreadIDs = append(s.SampleThreadIDs, id)
			s.SampleURLs = append(s.SampleURLs, t.URL)
		}
		if created != "" {
			if s.FirstSeen == "" || created < s.FirstSeen {
				s.FirstSeen = created
			}
			if s.LastSeen == "" || created > s.LastSeen {
				s.LastSeen = created
			}
		}
	}

	for _, e := range ExtractEntities(full) {
		s := a.entity(strings.ToUpper(e.Entity))
		s.Mentions++
		s.Category = e.Category
		if s.lastThread != id || s.Threads == 0 {
			s.Threads++
			s.lastThread = id
		}
		if len(s.SampleThreadIDs) < maxSamples {
			s.SampleThreadIDs = append(s.SampleThreadIDs, id)
			s.SampleURLs = append(s.SampleURLs, t.URL)
		}
	}

	tags := MarketingSignals(full)
	if IsMarketingCandidate(len(tags), eng) {
		kept := tags
		if len(kept) > marketingTags {
			kept = kept[:marketingTags]
		}
		a.marketing = append(a.marketing, MarketingCandidate{
			SourceType:  sourceThread,
			ThreadID:    id,
			CreatedAt:   created,
			URL:         t.URL,
			Engagement:  eng,
			Tags:        kept,
			TextSnippet: Snippet(post, marketingSnippet),
			Score:       MarketingScore(len(tags), eng),
		})
	}

	for ti, score := range a.scorer.Scores(full) {
		if score > 0 {
			a.topicHits[ti] = append(a.topicHits[ti], TopicHit{ThreadID: id, URL: t.URL, Score: score, Engagement: eng})
		}
	}
}

// Len is the number of threads added so far.
func (a *Aggregator) Len() int { return len(a.threads) }

// Result is the finished aggregation, sorted for output.
type Result struct {
	Threads        []ThreadSummary
	Money          []MoneyMention
	Links          []LinkStat
	Domains        []DomainStat
	Entities       []EntityStat
	Marketing      []MarketingCandidate
	MarketingTotal int
	Index          *topics.Index
	ThreadsByMonth []MonthCount
	MoneyByMonth   []MonthCount
	Reactions      []int
}

// Result sorts the accumulators. Ties keep first-seen order throughout.
func (a *Aggregator) Result() *Result {
	r := &Result{
		Threads:        a.threads,
		Money:          a.money,
		MarketingTotal: len(a.marketing),
		Reactions:      a.reactions,
		ThreadsByMonth: monthSeries(a.threadsByMonth),
		MoneyByMonth:   monthSeries(a.moneyByMonth),
	}

	r.Links = make([]LinkStat, 0, len(a.linkOrder))
	for _, u := range a.linkOrder {
		r.Links = append(r.Links, *a.links[u])
	}
	sort.SliceStable(r.Links, func(i, j int) bool { return r.Links[i].Count > r.Links[j].Count })
	r.Domains = rollupDomains(a.linkOrder, a.links)

	r.Entities = make([]EntityStat, 0, len(a.entityOrder))
	for _, k := range a.entityOrder {
		r.Entities = append(r.Entities, *a.entities[k])
	}
	sort.SliceStable(r.Entities, func(i, j int) bool { return r.Entities[i].Mentions > r.Entities[j].Mentions })

	r.Marketing = append([]MarketingCandidate(nil), a.marketing...)
	sort.SliceStable(r.Marketing, func(i, j int) bool { return r.Marketing[i].Score > r.Marketing[j].Score })
	if len(r.Marketing) > TopMarketing {
		r.Marketing = r.Marketing[:TopMarketing]
	}

	r.Index = topics.NewIndex(a.defs)
	for ti := range r.Index.Topics {
		top := TopHits(a.topicHits[ti], TopicThreads)
		ids := make([]string, len(top))
		urls := make([]string, len(top))
		for i, h := range top {
			ids[i] = h.ThreadID
			urls[i] = h.URL
		}
		r.Index.Topics[ti].TopThreadIDs = ids
		r.Index.Topics[ti].TopURLs = urls
	}
	return r
}

// rollupDomains returns every domain ordered by total link count.
func rollupDomains(order []string, links map[string]*LinkStat) []DomainStat {
	byDomain := map[string]*DomainStat{}
	var domains []string
	for _, u := range order {
		l := links[u]
		if l.Domain == "" {
			continue
		}
		d, ok := byDomain[l.Domain]
		if !ok {
			d = &DomainStat{Domain: l.Domain}
			byDomain[l.Domain] = d
			domains = append(domains, l.Domain)
		}
		d.Count += l.Count
		d.Links++
		if len(d.SampleURLs) < maxSamples {
			d.SampleURLs = append(d.SampleURLs, u)
		}
	}
	out := make([]DomainStat, 0, len(domains))
	for _, d := range domains {
		out = append(out, *byDomain[d])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func monthSeries(m map[string]int) []MonthCount {
	out := make([]MonthCount, 0, len(m))
	for k, v := range m {
		out = append(out, MonthCount{Month: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
