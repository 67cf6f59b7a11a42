package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/pdfchunk/internal/document"
)

// maxSnapWindow caps how far back a cut point may move to reach a boundary.
const maxSnapWindow = 100

// ErrInvalidConfiguration is returned by New and Config.Validate when the
// overlap does not fit inside the window.
var ErrInvalidConfiguration = errors.New("invalid chunker configuration")

// Config controls chunking behavior. Sizes are in characters (runes).
type Config struct {
	WindowSize int // Target maximum chunk length.
	Overlap    int // Characters re-included from the previous chunk.
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize: 1000,
		Overlap:    200,
	}
}

// Validate reports whether the configuration can build a Chunker.
func (c Config) Validate() error {
	if c.Overlap < 0 {
		return fmt.Errorf("%w: chunk_overlap %d must not be negative", ErrInvalidConfiguration, c.Overlap)
	}
	if c.Overlap >= c.WindowSize {
		return fmt.Errorf("%w: chunk_overlap must be less than chunk_size (%d >= %d)", ErrInvalidConfiguration, c.Overlap, c.WindowSize)
	}
	return nil
}

// Chunker splits text into overlapping, sentence-aware windows.
// It is immutable and safe for concurrent use.
type Chunker struct {
	cfg      Config
	boundary Boundary
}

// Option customizes a Chunker.
type Option func(*Chunker)

// WithBoundary replaces the sentence boundary detector.
func WithBoundary(b Boundary) Option {
	return func(c *Chunker) {
		if b != nil {
			c.boundary = b
		}
	}
}

// New validates cfg and returns a Chunker.
func New(cfg Config, opts ...Option) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Chunker{
		cfg:      cfg,
		boundary: SentenceBoundary(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the chunker was built with.
func (c *Chunker) Config() Config {
	return c.cfg
}

// Chunk walks text left to right and emits windows covering all of it.
// Empty or whitespace-only text yields no chunks.
func (c *Chunker) Chunk(text string, pages []document.PageRange) []document.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []document.Chunk

	for start := 0; start < n; {
		end := min(start+c.cfg.WindowSize, n)
		if end < n {
			if b := c.snap(runes, end); b > start {
				end = b
			}
		}

		index := len(chunks)
		chunks = append(chunks, document.Chunk{
			Index:       index,
			Content:     string(runes[start:end]),
			StartChar:   start,
			EndChar:     end,
			PageNumbers: PageNumbers(start, end, pages),
			Metadata: document.ChunkMetadata{
				HasOverlapWithPrevious: index > 0,
				HasOverlapWithNext:     end < n,
			},
		})

		if end >= n {
			break
		}
		next := end - c.cfg.Overlap
		if next <= start {
			// A deep snap can leave no room for overlap; continue flush.
			next = end
		}
		start = next
	}

	return chunks
}

// snap moves target back to the nearest boundary within the search window,
// or returns target unchanged.
func (c *Chunker) snap(runes []rune, target int) int {
	window := min(maxSnapWindow, c.cfg.Overlap)
	lo := max(0, target-window)
	if pos, ok := c.boundary.FindBoundary(runes, lo, target); ok {
		return pos
	}
	return target
}
