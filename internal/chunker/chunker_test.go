package chunker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfchunk/internal/document"
)

func mustNew(t *testing.T, cfg Config, opts ...Option) *Chunker {
	t.Helper()
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c
}

// reassemble stitches chunk contents back together, dropping the re-included
// prefix of every chunk after the first.
func reassemble(t *testing.T, chunks []document.Chunk) string {
	t.Helper()
	var sb strings.Builder
	for i, c := range chunks {
		runes := []rune(c.Content)
		require.Equal(t, c.EndChar-c.StartChar, len(runes), "chunk %d content length", i)
		if i == 0 {
			sb.WriteString(c.Content)
			continue
		}
		prevEnd := chunks[i-1].EndChar
		require.LessOrEqual(t, c.StartChar, prevEnd, "chunk %d leaves a gap", i)
		sb.WriteString(string(runes[prevEnd-c.StartChar:]))
	}
	return sb.String()
}

func assertCoverage(t *testing.T, text string, chunks []document.Chunk) {
	t.Helper()
	require.NotEmpty(t, chunks)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].EndChar)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Greater(t, c.EndChar, c.StartChar, "chunk %d is empty", i)
		assert.Equal(t, i > 0, c.Metadata.HasOverlapWithPrevious, "chunk %d previous flag", i)
		assert.Equal(t, i < len(chunks)-1, c.Metadata.HasOverlapWithNext, "chunk %d next flag", i)
	}
	assert.Equal(t, text, reassemble(t, chunks))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1000, cfg.WindowSize)
	assert.Equal(t, 200, cfg.Overlap)

	c := mustNew(t, cfg)
	assert.Equal(t, cfg, c.Config())
}

func TestNew_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"overlap equals window", Config{WindowSize: 100, Overlap: 100}},
		{"overlap exceeds window", Config{WindowSize: 100, Overlap: 150}},
		{"negative overlap", Config{WindowSize: 100, Overlap: -1}},
		{"zero window", Config{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
			assert.Nil(t, c)
		})
	}
}

func TestChunk_EmptyAndWhitespace(t *testing.T) {
	c := mustNew(t, DefaultConfig())
	for _, text := range []string{"", "   ", "\n\t \n"} {
		assert.Empty(t, c.Chunk(text, nil), "text %q", text)
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	text := "This is a short document. It fits in one window."
	c := mustNew(t, Config{WindowSize: 1000, Overlap: 200})
	chunks := c.Chunk(text, nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].StartChar)
	assert.Equal(t, len(text), chunks[0].EndChar)
	assert.Equal(t, []int{1}, chunks[0].PageNumbers)
	assert.False(t, chunks[0].Metadata.HasOverlapWithPrevious)
	assert.False(t, chunks[0].Metadata.HasOverlapWithNext)
}

func TestChunk_TextExactlyWindowSize(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := mustNew(t, Config{WindowSize: 50, Overlap: 10}).Chunk(text, nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, 50, chunks[0].EndChar)
}

func TestChunk_LongTextCoverage(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	c := mustNew(t, Config{WindowSize: 200, Overlap: 50})
	chunks := c.Chunk(text, nil)

	require.Greater(t, len(chunks), 1)
	assertCoverage(t, text, chunks)
	for i, ch := range chunks {
		assert.LessOrEqual(t, ch.EndChar-ch.StartChar, 200, "chunk %d too long", i)
	}
}

func TestChunk_SentenceSnapping(t *testing.T) {
	text := "First sentence. Second sentence. Third sentence. Fourth sentence."
	c := mustNew(t, Config{WindowSize: 35, Overlap: 10})
	chunks := c.Chunk(text, nil)

	require.Len(t, chunks, 3)
	spans := [][2]int{{0, 33}, {23, 58}, {48, 65}}
	for i, want := range spans {
		assert.Equal(t, want[0], chunks[i].StartChar, "chunk %d start", i)
		assert.Equal(t, want[1], chunks[i].EndChar, "chunk %d end", i)
	}
	assert.Equal(t, "First sentence. Second sentence. ", chunks[0].Content)

	for i, ch := range chunks[:len(chunks)-1] {
		content := strings.TrimRight(ch.Content, " \n\t")
		ok := strings.HasSuffix(content, ".") || strings.HasSuffix(content, "?") ||
			strings.HasSuffix(content, "!") || len(content) <= 35
		assert.True(t, ok, "chunk %d ends mid-sentence: %q", i, ch.Content)
	}
	assertCoverage(t, text, chunks)
}

func TestChunk_SnapPicksRightmostTerminator(t *testing.T) {
	// "?\n" sits after ". " inside the search window and must win.
	text := "aaaaaaaaaaaaaaaa. bbbbbbb?\ncccccccccccccccccccccccc"
	c := mustNew(t, Config{WindowSize: 30, Overlap: 20})
	chunks := c.Chunk(text, nil)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 27, chunks[0].EndChar)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "?\n"))
}

func TestChunk_NoTerminatorHardCut(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30)
	c := mustNew(t, Config{WindowSize: 100, Overlap: 20})
	chunks := c.Chunk(text, nil)

	require.Len(t, chunks, 4)
	assert.Equal(t, 100, chunks[0].EndChar)
	assert.Equal(t, 80, chunks[1].StartChar)
	assert.Equal(t, 180, chunks[1].EndChar)
	assertCoverage(t, text, chunks)
}

func TestChunk_ZeroOverlapIsAdjacent(t *testing.T) {
	text := "One. Two. Three. Four. Five. Six. Seven. Eight."
	c := mustNew(t, Config{WindowSize: 10, Overlap: 0})
	chunks := c.Chunk(text, nil)

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].EndChar, chunks[i].StartChar)
	}
	assertCoverage(t, text, chunks)
}

func TestChunk_DeepSnapStillAdvances(t *testing.T) {
	// The terminator lands so far back that end-overlap would rewind the
	// cursor; the next chunk must start at the snapped end instead.
	text := "aaaaaaaaaa. " + strings.Repeat("b", 200)
	c := mustNew(t, Config{WindowSize: 100, Overlap: 90})
	chunks := c.Chunk(text, nil)

	require.Greater(t, len(chunks), 2)
	assert.Equal(t, 12, chunks[0].EndChar)
	assert.Equal(t, 12, chunks[1].StartChar)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].StartChar, chunks[i-1].StartChar)
	}
	assertCoverage(t, text, chunks)
}

func TestChunk_OffsetsAreRunes(t *testing.T) {
	text := strings.Repeat("Café crème brûlée. ", 20)
	c := mustNew(t, Config{WindowSize: 60, Overlap: 15})
	chunks := c.Chunk(text, nil)

	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.Equal(t, string([]rune(text)[ch.StartChar:ch.EndChar]), ch.Content)
	}
	assertCoverage(t, text, chunks)
}

func TestChunk_PageNumbers(t *testing.T) {
	text := "Page 1 content. Page 2 content. Page 3 content."
	pages := []document.PageRange{{Start: 0, End: 16}, {Start: 16, End: 32}, {Start: 32, End: 47}}
	c := mustNew(t, Config{WindowSize: 100, Overlap: 20})
	chunks := c.Chunk(text, pages)

	require.Len(t, chunks, 1)
	assert.Equal(t, []int{1, 2, 3}, chunks[0].PageNumbers)
}

func TestChunk_PageNumbersPerChunk(t *testing.T) {
	text := strings.Repeat("a", 40) + strings.Repeat("b", 40)
	pages := []document.PageRange{{Start: 0, End: 40}, {Start: 40, End: 80}}
	c := mustNew(t, Config{WindowSize: 30, Overlap: 5})
	chunks := c.Chunk(text, pages)

	// Spans: [0,30) [25,55) [50,80).
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1}, chunks[0].PageNumbers)
	assert.Equal(t, []int{1, 2}, chunks[1].PageNumbers)
	assert.Equal(t, []int{2}, chunks[2].PageNumbers)
}

func TestChunk_CustomBoundary(t *testing.T) {
	never := BoundaryFunc(func([]rune, int, int) (int, bool) { return 0, false })
	text := "One. Two. Three. Four. Five."
	c := mustNew(t, Config{WindowSize: 10, Overlap: 2}, WithBoundary(never))
	chunks := c.Chunk(text, nil)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 10, chunks[0].EndChar)
	assert.Equal(t, 8, chunks[1].StartChar)
	assertCoverage(t, text, chunks)
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("Is this stable? Yes it is! Very much so.\n", 40)
	c := mustNew(t, Config{WindowSize: 120, Overlap: 30})
	assert.Equal(t, c.Chunk(text, nil), c.Chunk(text, nil))
}

func TestChunk_ConcurrentUse(t *testing.T) {
	c := mustNew(t, Config{WindowSize: 90, Overlap: 25})
	pages := []document.PageRange{{Start: 0, End: 400}, {Start: 401, End: 2000}}

	texts := make([]string, 16)
	want := make([][]document.Chunk, len(texts))
	for i := range texts {
		texts[i] = strings.Repeat(fmt.Sprintf("Sentence %d goes here. Another one? Yes!\n", i), 10+i)
		want[i] = c.Chunk(texts[i], pages)
	}

	got := make([][]document.Chunk, len(texts))
	var wg sync.WaitGroup
	for i := range texts {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = c.Chunk(texts[i], pages)
		}()
	}
	wg.Wait()

	for i := range texts {
		assert.Equal(t, want[i], got[i], "text %d", i)
		assertCoverage(t, texts[i], got[i])
	}
	assert.Equal(t, Config{WindowSize: 90, Overlap: 25}, c.Config())
}
