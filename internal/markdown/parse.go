// Package markdown reads and writes Markdown documents with YAML frontmatter.
package markdown

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Document represents a Markdown file with YAML frontmatter.
type Document struct {
	Frontmatter map[string]any
	Body        string
}

// ParseFile reads a Markdown file and extracts YAML frontmatter and body.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse splits r into frontmatter and body. Frontmatter is expected at the top
// between two lines containing only "---".
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(len(fence))
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	hasFM := string(peek) == fence

	var fmBuf, bodyBuf strings.Builder
	if hasFM {
		// opening fence
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == fence {
				break
			}
			fmBuf.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
	}
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
	}

	d := Document{
		Frontmatter: map[string]any{},
		Body:        bodyBuf.String(),
	}
	if hasFM {
		m := map[string]any{}
		if err := yaml.Unmarshal([]byte(fmBuf.String()), &m); err != nil {
			return Document{}, err
		}
		d.Frontmatter = m
	}
	return d, nil
}

// Render writes frontmatter (any YAML-encodable value; structs keep field
// order) followed by a blank line and body. A nil frontmatter renders the body
// alone.
func Render(frontmatter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	if frontmatter != nil {
		fm, err := yaml.Marshal(frontmatter)
		if err != nil {
			return nil, err
		}
		buf.WriteString(fence + "\n")
		buf.Write(fm)
		buf.WriteString(fence + "\n\n")
	}
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// WriteFile renders the document to path.
func WriteFile(path string, frontmatter any, body string) error {
	b, err := Render(frontmatter, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
