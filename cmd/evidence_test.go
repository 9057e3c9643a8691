package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"threadpack/internal/markdown"
	"threadpack/internal/retrieval"
)

func TestDefaultEvidenceName(t *testing.T) {
	cases := map[string]string{
		"Dry Needling pricing?": "evidence_dry-needling-pricing.jsonl",
		"   ":                   "evidence_query.jsonl",
		"HIPAA & EMR":           "evidence_hipaa-and-emr.jsonl",
	}
	for in, want := range cases {
		if got := defaultEvidenceName(in); got != want {
			t.Errorf("defaultEvidenceName(%q) = %q, want %q", in, got, want)
		}
	}
}

type stubSummarizer struct {
	text    string
	err     error
	query   string
	records int
}

func (s *stubSummarizer) SummarizeEvidence(_ context.Context, query string, records []retrieval.EvidenceRecord, _ string) (string, error) {
	s.query = query
	s.records = len(records)
	return s.text, s.err
}

func TestWriteSummary(t *testing.T) {
	pack := filepath.Join(t.TempDir(), "evidence_cash-pay.jsonl")
	stub := &stubSummarizer{text: "Most charge $120 [thread_1]."}
	opt := summaryOptions{
		Query:    "cash pay",
		Title:    "Evidence summary: {.Query} ({.CurrentDate})",
		PackPath: pack,
		Now:      time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
	}
	path, err := writeSummary(context.Background(), stub, opt, []retrieval.EvidenceRecord{{ThreadID: "thread_1"}})
	if err != nil {
		t.Fatal(err)
	}
	if want := strings.TrimSuffix(pack, ".jsonl") + ".summary.md"; path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if stub.query != "cash pay" || stub.records != 1 {
		t.Fatalf("summarizer got query %q and %d records", stub.query, stub.records)
	}

	doc, err := markdown.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Frontmatter["title"]; got != "Evidence summary: cash pay (2025-01-03)" {
		t.Errorf("title = %v", got)
	}
	if got := doc.Frontmatter["evidence"]; got != "evidence_cash-pay.jsonl" {
		t.Errorf("evidence = %v", got)
	}
	if !strings.Contains(doc.Body, "[thread_1]") {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestWriteSummaryError(t *testing.T) {
	pack := filepath.Join(t.TempDir(), "p.jsonl")
	stub := &stubSummarizer{err: errors.New("quota")}
	_, err := writeSummary(context.Background(), stub, summaryOptions{Query: "q", PackPath: pack, Now: time.Now()}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(pack), "p.summary.md")); !os.IsNotExist(statErr) {
		t.Fatalf("summary should not be written on error")
	}
}
