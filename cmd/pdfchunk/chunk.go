package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfchunk/internal/chunker"
	"github.com/dgallion1/pdfchunk/internal/document"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Chunk plain text from a file or stdin",
	Long: `Split plain text into overlapping chunks without any extraction step.
Reads stdin when no file is given or the file is "-".

Examples:
  pdfchunk chunk notes.txt
  echo "One. Two. Three." | pdfchunk chunk --chunk-size 8 --overlap 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, err := chunkConfig()
	if err != nil {
		return err
	}
	ch, err := chunker.New(cfg)
	if err != nil {
		return err
	}

	var text []byte
	if len(args) == 0 || args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	chunks := ch.Chunk(string(text), nil)
	if chunks == nil {
		chunks = []document.Chunk{}
	}
	logger(cmd).Debug("chunked input", "characters", len([]rune(string(text))), "chunks", len(chunks))

	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"total_chunks": len(chunks),
		"chunks":       chunks,
	})
}
