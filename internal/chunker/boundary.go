package chunker

// Boundary finds a break point inside text[lo:hi]. It returns the offset just
// past the right-most boundary whose characters lie entirely within the range,
// or false if there is none.
type Boundary interface {
	FindBoundary(text []rune, lo, hi int) (int, bool)
}

// BoundaryFunc adapts a plain function to the Boundary interface.
type BoundaryFunc func(text []rune, lo, hi int) (int, bool)

func (f BoundaryFunc) FindBoundary(text []rune, lo, hi int) (int, bool) {
	return f(text, lo, hi)
}

// DefaultSentenceEndings are the terminators recognized by SentenceBoundary.
var DefaultSentenceEndings = []string{". ", "? ", "! ", ".\n", "?\n", "!\n"}

// PatternBoundary matches a fixed set of literal patterns.
type PatternBoundary struct {
	patterns [][]rune
}

// NewPatternBoundary builds a boundary over the given literal patterns.
// Empty patterns are ignored.
func NewPatternBoundary(patterns ...string) *PatternBoundary {
	pb := &PatternBoundary{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		pb.patterns = append(pb.patterns, []rune(p))
	}
	return pb
}

// SentenceBoundary returns the period/question/exclamation boundary used by
// default.
func SentenceBoundary() *PatternBoundary {
	return NewPatternBoundary(DefaultSentenceEndings...)
}

// FindBoundary walks right to left once; the first offset where any pattern
// fits before hi is the right-most match across all patterns.
func (pb *PatternBoundary) FindBoundary(text []rune, lo, hi int) (int, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(text) {
		hi = len(text)
	}
	for i := hi - 1; i >= lo; i-- {
		for _, p := range pb.patterns {
			if end := i + len(p); end <= hi && hasPrefixAt(text, i, p) {
				return end, true
			}
		}
	}
	return 0, false
}

func hasPrefixAt(text []rune, at int, p []rune) bool {
	for j, r := range p {
		if text[at+j] != r {
			return false
		}
	}
	return true
}
