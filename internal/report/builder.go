package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"threadpack/internal/analytics"
	"threadpack/internal/corpus"
	"threadpack/internal/imagegen"
	"threadpack/internal/markdown"
	"threadpack/internal/model"
	"threadpack/internal/topics"
)

// Output file names.
const (
	ReadmeFile     = "project_readme.md"
	ReportFile     = "report.md"
	TopicIndexFile = "topic_index.json"
	WorkbookFile   = "pack.xlsx"
)

const (
	defaultTopN   = 300
	defaultTitle  = "Thread Knowledge Pack"
	histogramBins = 50
	histogramMax  = 100
	chartDomains  = 15
)

// Source yields threads until io.EOF.
type Source interface {
	Next() (model.Thread, error)
}

// Builder aggregates a corpus and writes the pack directory.
type Builder struct {
	OutDir      string
	TopN        int
	Title       string
	XLSX        bool
	Charts      bool
	WebPQuality int
	Definitions []topics.Definition
	Now         func() time.Time
}

// File is one written output.
type File struct {
	Name string
	Size int64
}

// Summary describes a finished build.
type Summary struct {
	Dir    string
	Result *analytics.Result
	Files  []File
}

type frontmatter struct {
	Title     string `yaml:"title"`
	Generated string `yaml:"generated"`
	Threads   int    `yaml:"threads"`
	DateRange string `yaml:"date_range,omitempty"`
}

// Build reads src in one pass, then clears OutDir and writes every output.
// Nothing is removed if reading the corpus fails.
func (b *Builder) Build(ctx context.Context, src Source) (*Summary, error) {
	if strings.TrimSpace(b.OutDir) == "" {
		return nil, errors.New("report: output directory is required")
	}
	if b.TopN <= 0 {
		b.TopN = defaultTopN
	}
	if b.Now == nil {
		b.Now = time.Now
	}

	agg := analytics.NewAggregator(b.Definitions)
	err := corpus.Each(src, func(t model.Thread) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		agg.Add(t)
		if agg.Len()%1000 == 0 {
			slog.Debug("report: aggregating", "processed", agg.Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("report: corpus aggregated", "threads", agg.Len())
	res := agg.Result()

	if err := os.RemoveAll(b.OutDir); err != nil {
		return nil, fmt.Errorf("report: clear output: %w", err)
	}
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create output: %w", err)
	}

	if err := b.writeMarkdown(res); err != nil {
		return nil, err
	}
	tables := Tables(res, b.TopN)
	for _, t := range tables {
		if err := WriteCSV(b.OutDir, t); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	if b.XLSX {
		if err := WriteXLSX(filepath.Join(b.OutDir, WorkbookFile), tables); err != nil {
			return nil, fmt.Errorf("report: write workbook: %w", err)
		}
	}
	if err := res.Index.Save(filepath.Join(b.OutDir, TopicIndexFile)); err != nil {
		return nil, fmt.Errorf("report: write topic index: %w", err)
	}
	if b.Charts {
		b.writeCharts(res)
	}

	files, err := listFiles(b.OutDir)
	if err != nil {
		return nil, err
	}
	return &Summary{Dir: b.OutDir, Result: res, Files: files}, nil
}

func (b *Builder) title() string {
	t := strings.TrimSpace(b.Title)
	if t == "" {
		t = defaultTitle
	}
	return ExpandVars(t, b.Now(), "")
}

func (b *Builder) writeMarkdown(res *analytics.Result) error {
	stats := res.Stats()
	fm := frontmatter{
		Generated: b.Now().UTC().Format("2006-01-02 15:04"),
		Threads:   stats.Threads,
	}
	if stats.DateMin != "" {
		fm.DateRange = stats.DateMin + " to " + stats.DateMax
	}

	readme, err := RenderReadme(ReadmeData{
		Title:     b.title(),
		Stats:     stats,
		TopN:      b.TopN,
		XLSX:      b.XLSX,
		Charts:    b.Charts,
		Topics:    res.Index.Topics,
		IndexPath: filepath.Join(b.OutDir, TopicIndexFile),
	})
	if err != nil {
		return fmt.Errorf("report: render readme: %w", err)
	}
	fm.Title = b.title()
	if err := markdown.WriteFile(filepath.Join(b.OutDir, ReadmeFile), fm, readme); err != nil {
		return fmt.Errorf("report: write readme: %w", err)
	}

	body, err := RenderReport(ReportData{
		Title:          "Dataset Report",
		Stats:          stats,
		Charts:         b.Charts,
		TopMonths:      analytics.TopMonths(res.ThreadsByMonth, 5),
		TopDomains:     res.TopDomainsByLinks(10),
		MoneyCount:     len(res.Money),
		URLCount:       len(res.Links),
		EntityCount:    len(res.Entities),
		MarketingCount: res.MarketingTotal,
	})
	if err != nil {
		return fmt.Errorf("report: render report: %w", err)
	}
	fm.Title = b.title() + " - Dataset Report"
	if err := markdown.WriteFile(filepath.Join(b.OutDir, ReportFile), fm, body); err != nil {
		return fmt.Errorf("report: write report: %w", err)
	}
	return nil
}

// writeCharts logs failures and carries on; charts are not load-bearing.
func (b *Builder) writeCharts(res *analytics.Result) {
	monthly := func(series []analytics.MonthCount) []float64 {
		out := make([]float64, len(series))
		for i, m := range series {
			out[i] = float64(m.Count)
		}
		return out
	}
	limit := histogramMax
	peak := 0
	for _, v := range res.Reactions {
		peak = max(peak, v)
	}
	if peak > 0 && peak < limit {
		limit = peak
	}
	domains := res.TopDomainsByLinks(chartDomains)
	domainLinks := make([]float64, len(domains))
	for i, d := range domains {
		domainLinks[i] = float64(d.Links)
	}

	charts := []struct {
		name  string
		chart imagegen.Chart
	}{
		{"threads_over_time.webp", imagegen.Chart{Values: monthly(res.ThreadsByMonth), Kind: imagegen.Bars, Color: imagegen.SteelBlue}},
		{"engagement_hist_reactions.webp", imagegen.Chart{Values: imagegen.Histogram(res.Reactions, histogramBins, limit), Kind: imagegen.Bars, Color: imagegen.Coral, Width: 1000}},
		{"top_domains.webp", imagegen.Chart{Values: domainLinks, Kind: imagegen.HorizontalBars, Color: imagegen.SeaGreen, Width: 1000, Height: 600}},
		{"money_mentions_over_time.webp", imagegen.Chart{Values: monthly(res.MoneyByMonth), Kind: imagegen.Area, Color: imagegen.DarkGreen}},
	}
	for _, c := range charts {
		path := filepath.Join(b.OutDir, c.name)
		if err := imagegen.WriteWebP(path, c.chart.Render(), b.WebPQuality); err != nil {
			slog.Warn("report: chart skipped", "chart", c.name, "err", err)
		}
	}
}

func listFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]File, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, File{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
