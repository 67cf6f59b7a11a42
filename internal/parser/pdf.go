package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/pdfchunk/internal/document"
)

const (
	extractorPDFLib    = "ledongthuc/pdf"
	extractorPdftotext = "pdftotext"
)

// PDFParser handles PDF files. It tries the Go library first, then falls
// back to pdftotext if enabled and the library fails or finds no text.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf and pdftotext both want a path.
	tmp, err := os.CreateTemp("", "pdfchunk-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	extractor := extractorPDFLib
	pages, err := extractPDFPages(tmpPath)
	if p.FallbackPdftotext && (err != nil || blank(pages)) {
		if fallback, ferr := extractPdftotext(tmpPath); ferr == nil {
			pages, err, extractor = fallback, nil, extractorPdftotext
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var b document.Builder
	for _, page := range pages {
		b.AddPage(strings.TrimSpace(page))
	}

	return &document.Document{
		Title:     titleFromFilename(filename),
		Text:      b.Text(),
		Pages:     b.Pages(),
		Extractor: extractor,
	}, nil
}

// extractPDFPages returns one string per page. Pages the library cannot
// read come back empty so page numbering stays aligned.
func extractPDFPages(path string) (pages []string, err error) {
	// The library panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so a trailing empty segment is dropped.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}

func blank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
