package model

// Thread represents a single discussion post with its top comments.
type Thread struct {
	ThreadID   string    `json:"thread_id"`
	AltID      string    `json:"id,omitempty"`
	CreatedAt  string    `json:"createdAt_iso,omitempty"`
	CreatedTS  int64     `json:"createdAt_ts,omitempty"`
	URL        string    `json:"url"`
	AuthorName string    `json:"author_name,omitempty"`
	AuthorURL  string    `json:"author_url,omitempty"`
	TextRaw    string    `json:"text_raw,omitempty"`
	TextClean  string    `json:"text_clean,omitempty"`
	Metrics    Metrics   `json:"metrics"`
	Comments   []Comment `json:"comments,omitempty"`
	GroupID    string    `json:"groupId,omitempty"`
}

// Comment belongs to exactly one Thread.
type Comment struct {
	CommentID  string `json:"comment_id"`
	ThreadID   string `json:"thread_id"`
	CreatedAt  string `json:"createdAt_iso,omitempty"`
	URL        string `json:"url"`
	AuthorName string `json:"author_name,omitempty"`
	TextRaw    string `json:"text_raw,omitempty"`
	TextClean  string `json:"text_clean,omitempty"`
}

// Metrics holds raw interaction counts. Missing fields decode as zero.
type Metrics struct {
	Reactions int `json:"reactionCount"`
	Comments  int `json:"commentCount"`
	Shares    int `json:"shareCount"`
}

// Engagement weights shares highest, then comments, then reactions.
func (m Metrics) Engagement() int {
	return m.Reactions + m.Comments*2 + m.Shares*3
}

// ID returns the thread identifier, accepting records keyed by "id".
func (t Thread) ID() string {
	if t.ThreadID != "" {
		return t.ThreadID
	}
	return t.AltID
}

// Text prefers the cleaned body and falls back to the raw one.
func (t Thread) Text() string {
	return firstText(t.TextClean, t.TextRaw)
}

// CommentTexts returns the non-empty texts of the first max comments.
// A negative max returns all of them.
func (t Thread) CommentTexts(max int) []string {
	cs := t.Comments
	if max >= 0 && len(cs) > max {
		cs = cs[:max]
	}
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if s := c.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Text prefers the cleaned body and falls back to the raw one.
func (c Comment) Text() string {
	return firstText(c.TextClean, c.TextRaw)
}

func firstText(clean, raw string) string {
	if clean != "" {
		return clean
	}
	return raw
}

// Scored decorates a thread with a relevance score and the keywords that produced it.
type Scored struct {
	Thread  Thread
	Score   float64
	Matched []string
}
