package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/pdfchunk/internal/document"
)

// TextParser handles plain text files. Paragraphs are separated by blank
// lines; runs of blank lines collapse to one separator.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// Lines are read whole; extracted text often has no line breaks at all.
	reader := bufio.NewReader(r)

	var b document.Builder
	var current strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) == "" {
				b.AddBlock(current.String())
				current.Reset()
			} else {
				if current.Len() > 0 {
					current.WriteString("\n")
				}
				current.WriteString(line)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	b.AddBlock(current.String())

	return &document.Document{
		Title:     titleFromFilename(filename),
		Text:      b.Text(),
		Extractor: "text",
	}, nil
}
