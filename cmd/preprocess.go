package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"threadpack/internal/preprocess"

	"github.com/spf13/cobra"
)

var (
	ppInput  string
	ppOutDir string
)

// preprocessCmd converts a raw scraper export into the clean JSONL corpus.
var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert a raw JSON export into threads_clean.jsonl and comments_clean.jsonl",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("preprocess: converting export", "input", ppInput, "outdir", ppOutDir)
		stats, err := preprocess.Run(ppInput, ppOutDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Threads: %d\nComments: %d\n", stats.Threads, stats.Comments)
		if stats.DateMin != nil {
			fmt.Fprintf(os.Stdout, "Date range: %s to %s\n", *stats.DateMin, *stats.DateMax)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", filepath.Join(ppOutDir, preprocess.ThreadsFile))
		return nil
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&ppInput, "input", "", "path to the raw JSON array export")
	preprocessCmd.Flags().StringVar(&ppOutDir, "outdir", "", "output directory")
	_ = preprocessCmd.MarkFlagRequired("input")
	_ = preprocessCmd.MarkFlagRequired("outdir")
	rootCmd.AddCommand(preprocessCmd)
}
