package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"threadpack/internal/corpus"
	"threadpack/internal/report"
	"threadpack/internal/topics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	buildInput    string
	buildOutDir   string
	buildTopN     int
	buildXLSX     bool
	buildNoCharts bool
)

// buildCmd aggregates a corpus into the analytics pack directory.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the analytics pack (reports, CSVs, topic index, charts) from a corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		topN := buildTopN
		if !cmd.Flags().Changed("topn") {
			topN = cfg.Pack.TopN
		}
		defs, err := topics.LoadDefinitions(cfg.Topics.File)
		if err != nil {
			return err
		}
		src, err := corpus.Open(buildInput)
		if err != nil {
			return err
		}
		defer src.Close()

		b := &report.Builder{
			OutDir:      buildOutDir,
			TopN:        topN,
			Title:       cfg.Pack.Title,
			XLSX:        buildXLSX || cfg.Pack.XLSX,
			Charts:      cfg.Pack.ChartsEnabled() && !buildNoCharts,
			WebPQuality: cfg.Pack.WebPQuality,
			Definitions: defs,
		}
		slog.Info("build: building pack", "input", buildInput, "outdir", buildOutDir, "topn", topN)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sum, err := b.Build(ctx, src)
		if err != nil {
			slog.Error("build: pack not written", "input", buildInput, "line", src.Line(), "err", err)
			return fmt.Errorf("build: %w", err)
		}

		p := message.NewPrinter(language.English)
		fmt.Fprintf(os.Stdout, "Output directory: %s\n", sum.Dir)
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"File", "Bytes"})
		for _, f := range sum.Files {
			t.AppendRow(table.Row{f.Name, p.Sprintf("%d", f.Size)})
		}
		t.Render()

		res := sum.Result
		p.Fprintf(os.Stdout, "Threads processed: %d\n", res.Stats().Threads)
		p.Fprintf(os.Stdout, "Money mentions: %d\n", len(res.Money))
		p.Fprintf(os.Stdout, "Unique external URLs: %d\n", len(res.Links))
		p.Fprintf(os.Stdout, "Unique entities: %d\n", len(res.Entities))
		p.Fprintf(os.Stdout, "Marketing candidates: %d\n", res.MarketingTotal)
		p.Fprintf(os.Stdout, "Topics indexed: %d\n", len(defs))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildInput, "input", "", "path to threads JSONL")
	buildCmd.Flags().StringVar(&buildOutDir, "outdir", "", "output directory (replaced on success)")
	buildCmd.Flags().IntVar(&buildTopN, "topn", 300, "number of top threads in the engagement table")
	buildCmd.Flags().BoolVar(&buildXLSX, "xlsx", false, "also write pack.xlsx with one sheet per table")
	buildCmd.Flags().BoolVar(&buildNoCharts, "no-charts", false, "skip the WebP charts")
	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("outdir")
	rootCmd.AddCommand(buildCmd)
}
