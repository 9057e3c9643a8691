package report

import (
	"strconv"
	"strings"

	"threadpack/internal/analytics"
)

// Table is a named grid written both as CSV and as an XLSX sheet.
type Table struct {
	Name   string
	Sheet  string
	Header []string
	Rows   [][]string
}

func joinSamples(s []string) string { return strings.Join(s, "|") }

// EngagementTable lists the top n threads by engagement.
func EngagementTable(r *analytics.Result, n int) Table {
	t := Table{
		Name:   "engagement_threads_top.csv",
		Sheet:  "engagement",
		Header: []string{"rank", "thread_id", "createdAt_iso", "url", "reactionCount", "commentCount", "shareCount", "text_snippet"},
	}
	for i, th := range r.TopByEngagement(n) {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			th.ThreadID,
			th.CreatedAt,
			th.URL,
			strconv.Itoa(th.Metrics.Reactions),
			strconv.Itoa(th.Metrics.Comments),
			strconv.Itoa(th.Metrics.Shares),
			th.Snippet,
		})
	}
	return t
}

// MoneyTable lists every pricing mention in corpus order.
func MoneyTable(r *analytics.Result) Table {
	t := Table{
		Name:   "money_mentions.csv",
		Sheet:  "money",
		Header: []string{"source_type", "thread_id", "comment_id", "createdAt_iso", "url", "matched_text", "amount_values", "context_tags", "text_snippet"},
	}
	for _, m := range r.Money {
		t.Rows = append(t.Rows, []string{
			m.SourceType,
			m.ThreadID,
			m.CommentID,
			m.CreatedAt,
			m.URL,
			m.MatchedText,
			analytics.FormatAmounts(m.Amounts),
			strings.Join(m.ContextTags, "|"),
			m.TextSnippet,
		})
	}
	return t
}

// LinksTable lists every canonical URL, most shared first.
func LinksTable(r *analytics.Result) Table {
	t := Table{
		Name:   "links_all.csv",
		Sheet:  "links",
		Header: []string{"url_canonical", "domain", "counts", "sample_thread_ids", "sample_urls", "first_seen_iso", "last_seen_iso"},
	}
	for _, l := range r.Links {
		t.Rows = append(t.Rows, []string{
			l.URL,
			l.Domain,
			strconv.Itoa(l.Count),
			joinSamples(l.SampleThreadIDs),
			joinSamples(l.SampleURLs),
			l.FirstSeen,
			l.LastSeen,
		})
	}
	return t
}

// DomainsTable keeps the most linked domains.
func DomainsTable(r *analytics.Result) Table {
	t := Table{
		Name:   "domains_top.csv",
		Sheet:  "domains",
		Header: []string{"domain", "counts", "sample_urls"},
	}
	for i, d := range r.Domains {
		if i == analytics.TopDomains {
			break
		}
		t.Rows = append(t.Rows, []string{d.Domain, strconv.Itoa(d.Count), joinSamples(d.SampleURLs)})
	}
	return t
}

// EntitiesTable lists credentials, course providers and software by mentions.
func EntitiesTable(r *analytics.Result) Table {
	t := Table{
		Name:   "resources_entities.csv",
		Sheet:  "entities",
		Header: []string{"entity", "category", "count_mentions", "doc_count_threads", "sample_thread_ids", "sample_urls"},
	}
	for _, e := range r.Entities {
		t.Rows = append(t.Rows, []string{
			e.Entity,
			e.Category,
			strconv.Itoa(e.Mentions),
			strconv.Itoa(e.Threads),
			joinSamples(e.SampleThreadIDs),
			joinSamples(e.SampleURLs),
		})
	}
	return t
}

// MarketingTable is the swipe file.
func MarketingTable(r *analytics.Result) Table {
	t := Table{
		Name:   "marketing_swipe_file.csv",
		Sheet:  "marketing",
		Header: []string{"source_type", "thread_id", "comment_id", "createdAt_iso", "url", "engagement", "tags_triggered", "text_snippet"},
	}
	for _, m := range r.Marketing {
		t.Rows = append(t.Rows, []string{
			m.SourceType,
			m.ThreadID,
			m.CommentID,
			m.CreatedAt,
			m.URL,
			strconv.Itoa(m.Engagement),
			strings.Join(m.Tags, "|"),
			m.TextSnippet,
		})
	}
	return t
}

// Tables returns every pack table in output order.
func Tables(r *analytics.Result, topN int) []Table {
	return []Table{
		EngagementTable(r, topN),
		MoneyTable(r),
		LinksTable(r),
		DomainsTable(r),
		EntitiesTable(r),
		MarketingTable(r),
	}
}
