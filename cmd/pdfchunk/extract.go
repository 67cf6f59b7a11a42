package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfchunk/internal/parser"
	"github.com/dgallion1/pdfchunk/internal/pipeline"
)

var noPdftotext bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a document and print its chunks as JSON",
	Long: `Extract text from a document and print the extraction result, including
page-attributed chunks, as JSON.

Examples:
  pdfchunk extract report.pdf
  pdfchunk extract notes.md --chunk-size 400 --overlap 40`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&noPdftotext, "no-pdftotext", false, "Do not fall back to the pdftotext binary for PDFs")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := chunkConfig()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	proc := pipeline.NewProcessor(parser.Options{PDFFallbackPdftotext: !noPdftotext}, cfg, 1, nil, nil, logger(cmd))
	res, err := proc.Process(cmd.Context(), pipeline.Request{
		Filename:    filepath.Base(path),
		Data:        data,
		ChunkConfig: cfg,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
