package topics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrMissingTopics is returned for an index document without a "topics" object.
var ErrMissingTopics = errors.New("topics: index has no \"topics\" object")

// Topic is one entry of the topic index: curated keywords plus the
// representative threads found by the last corpus pass.
type Topic struct {
	Name         string   `json:"-"`
	Keywords     []string `json:"keywords"`
	TopThreadIDs []string `json:"top_thread_ids"`
	TopURLs      []string `json:"top_urls"`
}

// Index maps topic names to topics. Order follows the source document and is
// the tie-break order when topics rank equally.
type Index struct {
	Topics []Topic
}

// Get looks a topic up by name.
func (ix *Index) Get(name string) (Topic, bool) {
	if ix == nil {
		return Topic{}, false
	}
	for _, t := range ix.Topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// UnmarshalJSON decodes {"topics": {...}} keeping the key order of the topics object.
func (ix *Index) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("topics: index: %w", err)
	}
	found := false
	var out []Topic
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return fmt.Errorf("topics: index: %w", err)
		}
		if key != "topics" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("topics: index: %w", err)
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingTopics, err)
		}
		found = true
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("topics: index: %w", err)
			}
			name, _ := tok.(string)
			t := Topic{}
			if err := dec.Decode(&t); err != nil {
				return fmt.Errorf("topics: index: topic %q: %w", name, err)
			}
			t.Name = name
			out = append(out, t)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fmt.Errorf("topics: index: %w", err)
		}
	}
	if !found {
		return ErrMissingTopics
	}
	ix.Topics = out
	return nil
}

// MarshalJSON encodes the index with topics in order.
func (ix Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"topics":{`)
	for i, t := range ix.Topics {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(normalized(t))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// normalized encodes empty lists as [] rather than null.
func normalized(t Topic) Topic {
	if t.Keywords == nil {
		t.Keywords = []string{}
	}
	if t.TopThreadIDs == nil {
		t.TopThreadIDs = []string{}
	}
	if t.TopURLs == nil {
		t.TopURLs = []string{}
	}
	return t
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// Read decodes a topic index document.
func Read(r io.Reader) (*Index, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("topics: read index: %w", err)
	}
	var ix Index
	if err := json.Unmarshal(b, &ix); err != nil {
		return nil, err
	}
	return &ix, nil
}

// Load reads the topic index at path.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("topics: open index: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Save writes the index as indented JSON, replacing any previous file.
func (ix *Index) Save(path string) error {
	b, err := json.Marshal(ix)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}

// NewIndex seeds an index from definitions, with no representative threads yet.
func NewIndex(defs []Definition) *Index {
	ix := &Index{Topics: make([]Topic, 0, len(defs))}
	for _, d := range defs {
		ix.Topics = append(ix.Topics, Topic{
			Name:     d.Name,
			Keywords: append([]string(nil), d.Keywords...),
		})
	}
	return ix
}
