package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"threadpack/internal/ai"
	"threadpack/internal/analytics"
	"threadpack/internal/corpus"
	"threadpack/internal/markdown"
	"threadpack/internal/model"
	"threadpack/internal/report"
	"threadpack/internal/retrieval"
	"threadpack/internal/topics"

	"github.com/gosimple/slug"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	previewRows = 5
	previewText = 60
)

var (
	evInput      string
	evTopicIndex string
	evQuery      string
	evK          int
	evOut        string
	evSummarize  bool
)

type summaryFrontmatter struct {
	Title     string `yaml:"title"`
	Query     string `yaml:"query"`
	Generated string `yaml:"generated"`
	Threads   int    `yaml:"threads"`
	Evidence  string `yaml:"evidence"`
}

// evidenceCmd ranks the corpus against a query and writes the evidence pack.
var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Build an evidence pack (JSONL) for a free-text query",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		k := evK
		if !cmd.Flags().Changed("k") {
			k = cfg.Evidence.K
		}
		out := strings.TrimSpace(evOut)
		if out == "" {
			out = filepath.Join(cfg.Evidence.OutputDir, defaultEvidenceName(evQuery))
		}

		ix, err := topics.Load(evTopicIndex)
		if err != nil {
			return err
		}
		src, err := corpus.Open(evInput)
		if err != nil {
			return err
		}
		defer src.Close()

		slog.Info("evidence: building pack", "query", evQuery, "input", evInput, "k", k, "out", out)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ranked, err := retrieval.Retrieve(ctx, src, ix, evQuery, k)
		if err != nil {
			slog.Error("evidence: corpus read failed", "input", evInput, "line", src.Line(), "err", err)
			return fmt.Errorf("evidence: %w", err)
		}
		records := retrieval.NewEvidenceRecords(ranked)
		if err := corpus.WriteJSONLFile(out, records); err != nil {
			return fmt.Errorf("evidence: write pack: %w", err)
		}
		slog.Info("evidence: pack written", "threads", len(records), "lines", src.Line(), "out", out)

		printPreview(records, ranked)

		if evSummarize {
			client, err := ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
			if err != nil {
				return fmt.Errorf("evidence: summarize: %w", err)
			}
			path, err := writeSummary(ctx, client, summaryOptions{
				Query:    evQuery,
				Title:    cfg.Evidence.SummaryTitle,
				Language: cfg.OpenAI.Language,
				PackPath: out,
				Now:      time.Now(),
			}, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Summary: %s\n", path)
		}
		return nil
	},
}

func defaultEvidenceName(query string) string {
	s := slug.Make(query)
	if s == "" {
		s = "query"
	}
	return "evidence_" + s + ".jsonl"
}

func printPreview(records []retrieval.EvidenceRecord, ranked []model.Scored) {
	fmt.Fprintf(os.Stdout, "Query: %s\nThreads selected: %d\n", evQuery, len(records))
	if len(records) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Thread", "Score", "Engagement", "Post"})
	for i, r := range records {
		if i >= previewRows {
			break
		}
		t.AppendRow(table.Row{
			i + 1,
			r.ThreadID,
			fmt.Sprintf("%.1f", ranked[i].Score),
			r.Metrics.Engagement(),
			analytics.Snippet(r.PostText, previewText),
		})
	}
	t.Render()
}

type summaryOptions struct {
	Query    string
	Title    string // supports {.Query} and {.CurrentDate}
	Language string
	PackPath string
	Now      time.Time
}

// writeSummary asks s for a pack summary and writes it next to the pack as
// <pack>.summary.md.
func writeSummary(ctx context.Context, s ai.Summarizer, opt summaryOptions, records []retrieval.EvidenceRecord) (string, error) {
	text, err := s.SummarizeEvidence(ctx, opt.Query, records, opt.Language)
	if err != nil {
		return "", fmt.Errorf("evidence: summarize: %w", err)
	}
	path := strings.TrimSuffix(opt.PackPath, filepath.Ext(opt.PackPath)) + ".summary.md"
	fm := summaryFrontmatter{
		Title:     report.ExpandVars(opt.Title, opt.Now, opt.Query),
		Query:     opt.Query,
		Generated: opt.Now.UTC().Format("2006-01-02 15:04"),
		Threads:   len(records),
		Evidence:  filepath.Base(opt.PackPath),
	}
	if err := markdown.WriteFile(path, fm, text+"\n"); err != nil {
		return "", fmt.Errorf("evidence: write summary: %w", err)
	}
	return path, nil
}

func init() {
	evidenceCmd.Flags().StringVar(&evInput, "input", "", "path to threads JSONL")
	evidenceCmd.Flags().StringVar(&evTopicIndex, "topic_index", "", "path to topic_index.json")
	evidenceCmd.Flags().StringVar(&evQuery, "query", "", "free-text query")
	evidenceCmd.Flags().IntVar(&evK, "k", retrieval.DefaultK, "number of threads to return")
	evidenceCmd.Flags().StringVar(&evOut, "out", "", "output evidence pack path (default: evidence_<query>.jsonl in evidence.output_dir)")
	evidenceCmd.Flags().BoolVar(&evSummarize, "summarize", false, "also write an AI summary grounded in the pack")
	for _, f := range []string{"input", "topic_index", "query"} {
		_ = evidenceCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(evidenceCmd)
}
