package analytics

import "sort"

// Stats are the corpus-wide figures shown in the report.
type Stats struct {
	Threads        int
	Comments       int
	DateMin        string
	DateMax        string
	TotalReactions int
	TotalComments  int
	TotalShares    int
	AvgReactions   float64
	AvgComments    float64
	EngagementP90  int
	EngagementP50  int
}

// Stats summarizes the threads of r.
func (r *Result) Stats() Stats {
	s := Stats{Threads: len(r.Threads)}
	engagements := make([]int, 0, len(r.Threads))
	for _, t := range r.Threads {
		s.Comments += t.Comments
		s.TotalReactions += t.Metrics.Reactions
		s.TotalComments += t.Metrics.Comments
		s.TotalShares += t.Metrics.Shares
		engagements = append(engagements, t.Metrics.Engagement())
		if t.CreatedAt == "" {
			continue
		}
		if s.DateMin == "" || t.CreatedAt < s.DateMin {
			s.DateMin = t.CreatedAt
		}
		if s.DateMax == "" || t.CreatedAt > s.DateMax {
			s.DateMax = t.CreatedAt
		}
	}
	s.DateMin = day(s.DateMin)
	s.DateMax = day(s.DateMax)
	if s.Threads > 0 {
		s.AvgReactions = float64(s.TotalReactions) / float64(s.Threads)
		s.AvgComments = float64(s.TotalComments) / float64(s.Threads)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(engagements)))
	s.EngagementP90 = rankAt(engagements, 0.1)
	s.EngagementP50 = rankAt(engagements, 0.5)
	return s
}

// rankAt reads a descending slice at fraction q of its length.
func rankAt(desc []int, q float64) int {
	if len(desc) == 0 {
		return 0
	}
	return desc[int(float64(len(desc))*q)]
}

func day(iso string) string {
	if len(iso) > 10 {
		return iso[:10]
	}
	return iso
}

// TopByEngagement returns up to n threads, most engaged first. Ties keep
// corpus order.
func (r *Result) TopByEngagement(n int) []ThreadSummary {
	out := append([]ThreadSummary(nil), r.Threads...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metrics.Engagement() > out[j].Metrics.Engagement()
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopDomainsByLinks ranks domains by distinct URLs shared, keeping n.
func (r *Result) TopDomainsByLinks(n int) []DomainStat {
	out := append([]DomainStat(nil), r.Domains...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Links > out[j].Links })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopMonths returns the n busiest months, ties in calendar order.
func TopMonths(series []MonthCount, n int) []MonthCount {
	out := append([]MonthCount(nil), series...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
