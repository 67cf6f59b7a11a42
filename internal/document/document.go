package document

import (
	"strings"
	"unicode/utf8"
)

// PageRange is a half-open [Start, End) span of rune offsets into a
// Document's text. The 1-indexed page number is its position in the slice.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Document is the flat text produced by a parser.
type Document struct {
	Title      string      // From metadata or filename
	Text       string      // Full extracted text
	Pages      []PageRange // One range per physical page; nil for unpaginated formats
	Extractor  string      // Library or tool that produced Text
	OCRApplied bool
}

// TotalPages reports the page count, treating unpaginated text as one page.
func (d *Document) TotalPages() int {
	if len(d.Pages) == 0 {
		return 1
	}
	return len(d.Pages)
}

// TotalCharacters is the rune length of Text.
func (d *Document) TotalCharacters() int {
	return utf8.RuneCountInString(d.Text)
}

// ChunkMetadata carries the positional overlap flags of a chunk.
type ChunkMetadata struct {
	HasOverlapWithPrevious bool `json:"has_overlap_with_previous"`
	HasOverlapWithNext     bool `json:"has_overlap_with_next"`
}

// Chunk is one window of a document's text.
type Chunk struct {
	Index       int           `json:"index"`
	Content     string        `json:"content"`
	StartChar   int           `json:"start_char"`
	EndChar     int           `json:"end_char"`
	PageNumbers []int         `json:"page_numbers"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// Builder accumulates text segments and tracks their rune offsets.
type Builder struct {
	sb    strings.Builder
	pos   int
	pages []PageRange
}

// AddPage appends one page of text separated from the previous page by a
// newline and records its range. Empty pages still get a (zero-length)
// range so page numbers stay aligned with the physical document.
func (b *Builder) AddPage(text string) {
	if len(b.pages) > 0 {
		b.write("\n")
	}
	start := b.pos
	b.write(text)
	b.pages = append(b.pages, PageRange{Start: start, End: b.pos})
}

// AddBlock appends a paragraph-like block separated by a blank line.
// Blank blocks are skipped.
func (b *Builder) AddBlock(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.pos > 0 {
		b.write("\n\n")
	}
	b.write(text)
}

func (b *Builder) write(s string) {
	b.sb.WriteString(s)
	b.pos += utf8.RuneCountInString(s)
}

// Text returns the accumulated text.
func (b *Builder) Text() string {
	return b.sb.String()
}

// Pages returns the recorded page ranges, or nil if AddPage was never called.
func (b *Builder) Pages() []PageRange {
	return b.pages
}
