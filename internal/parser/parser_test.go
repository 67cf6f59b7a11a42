package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	cases := map[string]any{
		"a.txt":      &TextParser{},
		"a.MD":       &MarkdownParser{},
		"a.markdown": &MarkdownParser{},
		"a.csv":      &CSVParser{},
		"a.html":     &HTMLParser{},
		"a.htm":      &HTMLParser{},
		"a.docx":     &DOCXParser{},
	}
	for name, want := range cases {
		p, err := ForFile(name, Options{})
		require.NoError(t, err, name)
		assert.IsType(t, want, p, name)
	}

	p, err := ForFile("scan.PDF", Options{PDFFallbackPdftotext: true})
	require.NoError(t, err)
	pdf, ok := p.(*PDFParser)
	require.True(t, ok)
	assert.True(t, pdf.FallbackPdftotext)
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("image.png", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestIsSupportedExtension(t *testing.T) {
	assert.True(t, IsSupportedExtension("report.pdf"))
	assert.True(t, IsSupportedExtension("REPORT.PDF"))
	assert.False(t, IsSupportedExtension("report.exe"))
	assert.False(t, IsSupportedExtension("report"))
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "notes.md", Detect("notes.md", []byte("%PDF-1.4")))
	assert.Equal(t, "upload.pdf", Detect("upload", []byte("%PDF-1.4\n")))
	assert.Equal(t, "upload.pdf", Detect("", []byte("%PDF-1.4\n")))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n")))
	assert.False(t, IsPDF([]byte("hello world")))
}
