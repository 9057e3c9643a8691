package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"threadpack/internal/analytics"
	"threadpack/internal/markdown"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var debugParseCmd = &cobra.Command{
	Use:   "debug-parse <markdown_path>",
	Short: "Debug: parse a generated markdown file and print its frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := markdown.ParseFile(args[0])
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(doc.Frontmatter))
		for k := range doc.Frontmatter {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, k := range keys {
			t.AppendRow(table.Row{k, analytics.Snippet(fmt.Sprint(doc.Frontmatter[k]), 80)})
		}
		t.Render()

		headings := 0
		for _, l := range strings.Split(doc.Body, "\n") {
			if strings.HasPrefix(l, "#") {
				headings++
			}
		}
		fmt.Fprintf(os.Stdout, "body bytes: %d, headings: %d\n", len(doc.Body), headings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugParseCmd)
}
