package chunker

import "github.com/dgallion1/pdfchunk/internal/document"

// PageNumbers lists the 1-indexed pages whose range overlaps [start, end).
// It falls back to [1] when no ranges are given or none overlap.
func PageNumbers(start, end int, pages []document.PageRange) []int {
	var out []int
	for i, p := range pages {
		if start < p.End && end > p.Start {
			out = append(out, i+1)
		}
	}
	if len(out) == 0 {
		return []int{1}
	}
	return out
}
