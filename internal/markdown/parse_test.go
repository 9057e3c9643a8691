package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseWithFrontmatter(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "report.md")
	content := "" +
		"---\n" +
		"title: \"Evidence pack: dry needling\"\n" +
		"query: dry needling course worth it\n" +
		"generated: 2025-10-24 00:30\n" +
		"summary: |-\n" +
		"  Some summary here.\n" +
		"---\n\n" +
		"## [thread_123](https://example.com)\n\nBody paragraph here.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	for _, k := range []string{"title", "query", "generated", "summary"} {
		if _, ok := doc.Frontmatter[k]; !ok {
			t.Errorf("missing %s in frontmatter", k)
		}
	}
	if wantSub := "## [thread_123](https://example.com)"; !strings.Contains(doc.Body, wantSub) {
		t.Errorf("body missing expected substring %q; got: %q", wantSub, doc.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "no_fm.md")
	body := "# Hello\n\nNo frontmatter here.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	if len(doc.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got: %+v", doc.Frontmatter)
	}
	if doc.Body != body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", body, doc.Body)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	type meta struct {
		Title   string `yaml:"title"`
		Threads int    `yaml:"threads"`
	}
	out, err := Render(meta{Title: "Dataset Report", Threads: 42}, "# Report\n")
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	want := "---\ntitle: Dataset Report\nthreads: 42\n---\n\n# Report\n"
	if string(out) != want {
		t.Fatalf("render mismatch.\nwant: %q\n got: %q", want, string(out))
	}

	doc, err := Parse(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Frontmatter["threads"] != 42 {
		t.Errorf("threads = %v, want 42", doc.Frontmatter["threads"])
	}
	if doc.Body != "\n# Report\n" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestRenderWithoutFrontmatter(t *testing.T) {
	out, err := Render(nil, "plain")
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(out) != "plain" {
		t.Errorf("got %q", string(out))
	}
}

func TestParseInvalidFrontmatter(t *testing.T) {
	if _, err := Parse(strings.NewReader("---\ntitle: [unclosed\n---\nbody\n")); err == nil {
		t.Fatal("expected yaml error")
	}
}
