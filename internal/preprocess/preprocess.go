// Package preprocess turns raw scraper exports into the clean thread corpus.
package preprocess

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"threadpack/internal/corpus"
	"threadpack/internal/model"
)

// Output file names.
const (
	ThreadsFile  = "threads_clean.jsonl"
	CommentsFile = "comments_clean.jsonl"
	StatsFile    = "cleaning_stats.json"
)

// RawPost is one post as exported by the group scraper.
type RawPost struct {
	URL           string       `json:"url"`
	Text          string       `json:"text"`
	CreatedAt     float64      `json:"createdAt"`
	User          RawUser      `json:"user"`
	ReactionCount int          `json:"reactionCount"`
	ShareCount    int          `json:"shareCount"`
	CommentCount  int          `json:"commentCount"`
	GroupID       string       `json:"groupId"`
	TopComments   []RawComment `json:"topComments"`
}

// RawUser is a post or comment author.
type RawUser struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RawComment is one of a post's top comments.
type RawComment struct {
	URL       string  `json:"url"`
	Text      string  `json:"text"`
	CreatedAt float64 `json:"createdAt"`
	Author    RawUser `json:"author"`
}

// Stats summarizes a conversion.
type Stats struct {
	Threads        int     `json:"threads_count"`
	Comments       int     `json:"comments_count"`
	DateMin        *string `json:"date_min"`
	DateMax        *string `json:"date_max"`
	TotalReactions int     `json:"total_reactions"`
	TotalComments  int     `json:"total_comments"`
	TotalShares    int     `json:"total_shares"`
}

var (
	permalinkRe = regexp.MustCompile(`/permalink/(\d+)`)
	commentIDRe = regexp.MustCompile(`comment_id=(\d+)`)
	markupRe    = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// ThreadID derives a stable id from the permalink, falling back to a hash of
// the URL and creation time.
func ThreadID(url string, createdAt int64) string {
	if m := permalinkRe.FindStringSubmatch(url); m != nil {
		return "thread_" + m[1]
	}
	sum := md5.Sum([]byte(url + strconv.FormatInt(createdAt, 10)))
	return "thread_" + hex.EncodeToString(sum[:])[:12]
}

// CommentID uses the comment_id URL parameter, else the comment's position.
func CommentID(commentURL, threadID string, idx int) string {
	if m := commentIDRe.FindStringSubmatch(commentURL); m != nil {
		return "comment_" + m[1]
	}
	return fmt.Sprintf("%s_comment_%d", threadID, idx)
}

// CleanText strips markup when present and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	if markupRe.MatchString(text) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// ISOTime formats a Unix timestamp as UTC "2006-01-02T15:04:05Z"; zero is "".
func ISOTime(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02T15:04:05") + "Z"
}

// Result is a converted corpus.
type Result struct {
	Threads  []model.Thread
	Comments []model.Comment
	Stats    Stats
}

// Convert cleans posts and orders them newest first. Posts with equal
// timestamps keep input order.
func Convert(posts []RawPost) Result {
	var res Result
	for _, p := range posts {
		ts := int64(p.CreatedAt)
		id := ThreadID(p.URL, ts)
		th := model.Thread{
			ThreadID:   id,
			CreatedAt:  ISOTime(ts),
			CreatedTS:  ts,
			URL:        p.URL,
			AuthorName: p.User.Name,
			AuthorURL:  p.User.URL,
			TextRaw:    p.Text,
			TextClean:  CleanText(p.Text),
			Metrics: model.Metrics{
				Reactions: p.ReactionCount,
				Comments:  p.CommentCount,
				Shares:    p.ShareCount,
			},
			GroupID: p.GroupID,
		}
		for i, c := range p.TopComments {
			cm := model.Comment{
				CommentID:  CommentID(c.URL, id, i),
				ThreadID:   id,
				CreatedAt:  ISOTime(int64(c.CreatedAt)),
				URL:        c.URL,
				AuthorName: c.Author.Name,
				TextRaw:    c.Text,
				TextClean:  CleanText(c.Text),
			}
			th.Comments = append(th.Comments, cm)
			res.Comments = append(res.Comments, cm)
		}
		res.Threads = append(res.Threads, th)
	}
	sort.SliceStable(res.Threads, func(i, j int) bool { return res.Threads[i].CreatedTS > res.Threads[j].CreatedTS })
	res.Stats = stats(res)
	return res
}

func stats(r Result) Stats {
	s := Stats{Threads: len(r.Threads), Comments: len(r.Comments)}
	var lo, hi string
	for _, t := range r.Threads {
		s.TotalReactions += t.Metrics.Reactions
		s.TotalComments += t.Metrics.Comments
		s.TotalShares += t.Metrics.Shares
		if t.CreatedAt == "" {
			continue
		}
		if lo == "" || t.CreatedAt < lo {
			lo = t.CreatedAt
		}
		if hi == "" || t.CreatedAt > hi {
			hi = t.CreatedAt
		}
	}
	if lo != "" {
		s.DateMin, s.DateMax = &lo, &hi
	}
	return s
}

// ReadRaw decodes a JSON array of posts one element at a time.
func ReadRaw(r io.Reader) ([]RawPost, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("preprocess: read export: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("preprocess: export is not a JSON array")
	}
	var posts []RawPost
	for dec.More() {
		var p RawPost
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("preprocess: post %d: %w", len(posts), err)
		}
		posts = append(posts, p)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("preprocess: read export: %w", err)
	}
	return posts, nil
}

// Run converts the export at input and writes the clean corpus to outdir.
func Run(input, outdir string) (Stats, error) {
	f, err := os.Open(input)
	if err != nil {
		return Stats{}, fmt.Errorf("preprocess: open export: %w", err)
	}
	posts, err := ReadRaw(f)
	f.Close()
	if err != nil {
		return Stats{}, err
	}

	res := Convert(posts)
	if err := corpus.WriteJSONLFile(filepath.Join(outdir, ThreadsFile), res.Threads); err != nil {
		return Stats{}, fmt.Errorf("preprocess: write threads: %w", err)
	}
	if err := corpus.WriteJSONLFile(filepath.Join(outdir, CommentsFile), res.Comments); err != nil {
		return Stats{}, fmt.Errorf("preprocess: write comments: %w", err)
	}
	b, err := json.MarshalIndent(res.Stats, "", "  ")
	if err != nil {
		return Stats{}, err
	}
	if err := os.WriteFile(filepath.Join(outdir, StatsFile), b, 0o644); err != nil {
		return Stats{}, fmt.Errorf("preprocess: write stats: %w", err)
	}
	return res.Stats, nil
}
