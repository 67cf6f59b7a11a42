package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/pdfchunk/internal/chunker"
	"github.com/dgallion1/pdfchunk/internal/document"
	"github.com/dgallion1/pdfchunk/internal/metrics"
	"github.com/dgallion1/pdfchunk/internal/parser"
	"github.com/dgallion1/pdfchunk/internal/stats"
)

// sniffLen is how much of an upload is inspected when the filename has
// no usable extension.
const sniffLen = 3072

// Request is one document to extract and chunk. A zero ChunkConfig means
// the processor defaults.
type Request struct {
	Filename    string
	Data        []byte
	ChunkConfig chunker.Config
}

type ExtractionMetadata struct {
	Extractor        string  `json:"extractor"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	OCRApplied       bool    `json:"ocr_applied"`
}

// Result is the extraction response for one document.
type Result struct {
	Success            bool               `json:"success"`
	Filename           string             `json:"filename"`
	Title              string             `json:"title,omitempty"`
	TotalPages         int                `json:"total_pages"`
	TotalCharacters    int                `json:"total_characters"`
	TotalChunks        int                `json:"total_chunks"`
	Chunks             []document.Chunk   `json:"chunks"`
	ExtractionMetadata ExtractionMetadata `json:"extraction_metadata"`
}

// Processor runs parse and chunk for a single document.
type Processor struct {
	parserOpts    parser.Options
	defaults      chunker.Config
	maxConcurrent int

	stats   *stats.Window
	metrics *metrics.Metrics
	log     *slog.Logger

	cache atomic.Pointer[lru.Cache[string, *Result]]
}

// NewProcessor wires a processor. st and m may be nil.
func NewProcessor(opts parser.Options, defaults chunker.Config, maxConcurrent int, st *stats.Window, m *metrics.Metrics, log *slog.Logger) *Processor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Processor{
		parserOpts:    opts,
		defaults:      defaults,
		maxConcurrent: maxConcurrent,
		stats:         st,
		metrics:       m,
		log:           log,
	}
}

// Defaults returns the chunk settings used for requests without their own.
func (p *Processor) Defaults() chunker.Config {
	return p.defaults
}

// EnableCache keeps the last size results keyed by content, filename and
// chunk settings. A hit returns the stored result as is, processing time
// included.
func (p *Processor) EnableCache(size int) error {
	if size <= 0 {
		return fmt.Errorf("result cache size must be greater than zero, got %d", size)
	}
	cache, err := lru.New[string, *Result](size)
	if err != nil {
		return fmt.Errorf("init result cache: %w", err)
	}
	p.cache.Store(cache)
	return nil
}

// Process extracts and chunks one document.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	return p.run(ctx, req, nil)
}

func cacheKey(req Request, cfg chunker.Config) string {
	return fmt.Sprintf("%s|%s|%d|%d", ContentHashHex(req.Data), req.Filename, cfg.WindowSize, cfg.Overlap)
}

// run is Process with a hook that observes phase changes.
func (p *Processor) run(ctx context.Context, req Request, phase func(JobStatus)) (*Result, error) {
	if phase == nil {
		phase = func(JobStatus) {}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := req.ChunkConfig
	if cfg == (chunker.Config{}) {
		cfg = p.defaults
	}
	ch, err := chunker.New(cfg)
	if err != nil {
		return nil, err
	}

	cache := p.cache.Load()
	var key string
	if cache != nil {
		key = cacheKey(req, cfg)
		if res, ok := cache.Get(key); ok {
			p.log.Debug("result cache hit", "filename", req.Filename)
			return res, nil
		}
	}

	name := parser.Detect(req.Filename, head(req.Data))
	format := formatLabel(name)
	log := p.log.With("filename", req.Filename, "format", format)

	prs, err := parser.ForFile(name, p.parserOpts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	phase(StatusExtracting)
	doc, err := prs.Parse(bytes.NewReader(req.Data), req.Filename)
	if err != nil {
		elapsed := time.Since(start)
		p.metrics.ObserveDocument(format, metrics.OutcomeFailure, 0, elapsed)
		log.Error("extraction failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phase(StatusChunking)
	chunks := ch.Chunk(doc.Text, doc.Pages)
	if chunks == nil {
		chunks = []document.Chunk{}
	}
	elapsed := time.Since(start)

	if p.stats != nil {
		p.stats.Observe(elapsed)
	}
	p.metrics.ObserveDocument(format, metrics.OutcomeSuccess, len(chunks), elapsed)
	log.Info("document processed",
		"pages", doc.TotalPages(),
		"characters", doc.TotalCharacters(),
		"chunks", len(chunks),
		"extractor", doc.Extractor,
		"duration_ms", elapsed.Milliseconds(),
	)

	res := &Result{
		Success:         true,
		Filename:        req.Filename,
		Title:           doc.Title,
		TotalPages:      doc.TotalPages(),
		TotalCharacters: doc.TotalCharacters(),
		TotalChunks:     len(chunks),
		Chunks:          chunks,
		ExtractionMetadata: ExtractionMetadata{
			Extractor:        doc.Extractor,
			ProcessingTimeMs: elapsed.Milliseconds(),
			OCRApplied:       doc.OCRApplied,
		},
	}
	if cache != nil {
		cache.Add(key, res)
	}
	return res, nil
}

// BatchItem is the outcome for one file of a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Filename string  `json:"filename"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// ProcessBatch processes reqs with bounded concurrency. A failing file
// does not stop the others; items come back in request order.
func (p *Processor) ProcessBatch(ctx context.Context, reqs []Request) []BatchItem {
	items := make([]BatchItem, len(reqs))

	var g errgroup.Group
	g.SetLimit(p.maxConcurrent)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			items[i].Filename = req.Filename
			res, err := p.Process(ctx, req)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func head(data []byte) []byte {
	if len(data) > sniffLen {
		return data[:sniffLen]
	}
	return data
}

func formatLabel(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
