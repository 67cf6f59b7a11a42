// pdfchunk extracts documents and splits their text into overlapping,
// sentence-aware chunks from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfchunk/internal/chunker"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	chunkSize    int
	chunkOverlap int
	pretty       bool
	verbose      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfchunk",
	Short: "Extract documents and split them into overlapping chunks",
	Long: `pdfchunk extracts text from PDF, DOCX, HTML, Markdown, CSV and plain text
files and splits it into overlapping windows that end on sentence boundaries
where possible. Each chunk records the pages it came from.

Examples:
  # Extract and chunk a PDF
  pdfchunk extract report.pdf --pretty

  # Chunk plain text from stdin
  cat notes.txt | pdfchunk chunk --chunk-size 500 --overlap 50`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := chunker.DefaultConfig()
	rootCmd.PersistentFlags().IntVarP(&chunkSize, "chunk-size", "s", defaults.WindowSize, "Chunk size in characters")
	rootCmd.PersistentFlags().IntVarP(&chunkOverlap, "overlap", "o", defaults.Overlap, "Characters shared by consecutive chunks")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(chunkCmd)
}

func chunkConfig() (chunker.Config, error) {
	cfg := chunker.Config{WindowSize: chunkSize, Overlap: chunkOverlap}
	if err := cfg.Validate(); err != nil {
		return chunker.Config{}, err
	}
	return cfg, nil
}

func logger(cmd *cobra.Command) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
