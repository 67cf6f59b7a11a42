package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dgallion1/pdfchunk/internal/document"
)

// ErrUnsupportedFormat is returned for files no parser can handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser converts raw document bytes into flat text with page ranges.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tune parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Detect returns a filename the parsers can dispatch on. Names with a
// supported extension are kept; otherwise the content is sniffed and the
// detected extension is appended.
func Detect(filename string, head []byte) string {
	if IsSupportedExtension(filename) {
		return filename
	}
	ext := mimetype.Detect(head).Extension()
	if ext == "" {
		return filename
	}
	if filename == "" {
		filename = "upload"
	}
	return filename + ext
}

// IsPDF reports whether data carries a PDF signature.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is("application/pdf")
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
