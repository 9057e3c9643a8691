// Package report writes the knowledge-pack directory: Markdown overviews,
// CSV tables, an optional workbook, charts, and the topic index.
package report

import (
	"bytes"
	_ "embed"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"threadpack/internal/analytics"
	"threadpack/internal/topics"
)

// ReadmeData feeds project_readme.md.
type ReadmeData struct {
	Title     string
	Stats     analytics.Stats
	TopN      int
	XLSX      bool
	Charts    bool
	Topics    []topics.Topic
	IndexPath string
}

// ReportData feeds report.md.
type ReportData struct {
	Title          string
	Stats          analytics.Stats
	Charts         bool
	TopMonths      []analytics.MonthCount
	TopDomains     []analytics.DomainStat
	MoneyCount     int
	URLCount       int
	EntityCount    int
	MarketingCount int
}

//go:embed readme.tmpl
var readmeTpl string

//go:embed report.tmpl
var reportTpl string

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"num": func(n int) string { return printer.Sprintf("%d", n) },
}

var (
	readmeCompiled = template.Must(template.New("readme").Funcs(funcs).Parse(readmeTpl))
	reportCompiled = template.Must(template.New("report").Funcs(funcs).Parse(reportTpl))
)

// RenderReadme renders the pack readme body.
func RenderReadme(d ReadmeData) (string, error) {
	var buf bytes.Buffer
	if err := readmeCompiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderReport renders the dataset report body.
func RenderReport(d ReportData) (string, error) {
	var buf bytes.Buffer
	if err := reportCompiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
