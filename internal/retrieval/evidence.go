package retrieval

import (
	"fmt"
	"strings"

	"threadpack/internal/model"
)

const (
	evidenceComments = 5
	whyKeywords      = 5
	highEngagement   = 10
)

// EvidenceRecord is one line of an evidence pack.
type EvidenceRecord struct {
	ThreadID     string        `json:"thread_id"`
	URL          string        `json:"url"`
	CreatedAt    string        `json:"createdAt_iso"`
	Metrics      model.Metrics `json:"metrics"`
	PostText     string        `json:"post_text"`
	CommentsText []string      `json:"comments_text"`
	WhySelected  string        `json:"why_selected"`
}

// NewEvidenceRecord turns a ranked thread into its citation record.
func NewEvidenceRecord(s model.Scored) EvidenceRecord {
	t := s.Thread
	return EvidenceRecord{
		ThreadID:     t.ID(),
		URL:          t.URL,
		CreatedAt:    t.CreatedAt,
		Metrics:      t.Metrics,
		PostText:     t.Text(),
		CommentsText: t.CommentTexts(evidenceComments),
		WhySelected:  WhySelected(s.Matched, t.Metrics.Engagement(), s.Score),
	}
}

// NewEvidenceRecords maps NewEvidenceRecord over a ranking.
func NewEvidenceRecords(ranked []model.Scored) []EvidenceRecord {
	out := make([]EvidenceRecord, len(ranked))
	for i, s := range ranked {
		out[i] = NewEvidenceRecord(s)
	}
	return out
}

// WhySelected explains a selection, e.g.
// "Matched keywords: dry, needling; High engagement (57); Relevance score: 12.3".
func WhySelected(matched []string, engagement int, score float64) string {
	parts := make([]string, 0, 3)
	if len(matched) > 0 {
		if len(matched) > whyKeywords {
			matched = matched[:whyKeywords]
		}
		parts = append(parts, "Matched keywords: "+strings.Join(matched, ", "))
	}
	if engagement > highEngagement {
		parts = append(parts, fmt.Sprintf("High engagement (%d)", engagement))
	}
	parts = append(parts, fmt.Sprintf("Relevance score: %.1f", score))
	return strings.Join(parts, "; ")
}
