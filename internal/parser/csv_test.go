package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser_RendersRowsWithHeaders(t *testing.T) {
	input := "name,role\nAda,chair\nGrace,secretary\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "members.csv")
	require.NoError(t, err)

	assert.Equal(t, "members", doc.Title)
	assert.Equal(t, "name: Ada, role: chair\nname: Grace, role: secretary", doc.Text)
}

func TestCSVParser_BatchesRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 45; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(sb.String()), "nums.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, len(strings.Split(doc.Text, "\n\n")))
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.csv")
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
}
