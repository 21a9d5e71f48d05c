// Package segment restores word boundaries in text written without spaces.
//
// Segmentation is a forward dynamic program over rune positions. For every
// prefix length i it keeps the cheapest score to cover text[:i], looking back
// at most MaxWordLength runes for the last word. A Segmenter holds no mutable
// state and is safe for concurrent use.
package segment

import (
	"strings"

	"github.com/oarkflow/wordsplit/costmodel"
)

// Lexicon is the read-only view of a cost model the segmenter needs.
type Lexicon interface {
	Cost(key string) (float64, bool)
	MaxWordLength() int
}

// Score is the cost of a segmentation prefix. Unknown counts the runes
// covered by words missing from the lexicon; any score with fewer unknown
// runes is cheaper regardless of Cost.
type Score struct {
	Unknown int
	Cost    float64
}

// Less reports whether s is strictly cheaper than o.
func (s Score) Less(o Score) bool {
	if s.Unknown != o.Unknown {
		return s.Unknown < o.Unknown
	}
	return s.Cost < o.Cost
}

// Trace is the dynamic-programming table for one input.
type Trace struct {
	// Cumulative[i] is the best score for the first i runes.
	Cumulative []Score
	// Split[i] is the rune length of the last word on the best path to i.
	// Split[0] is always 0.
	Split []int
}

// Segmenter splits text using a Lexicon.
type Segmenter struct {
	lex Lexicon
}

// New returns a Segmenter backed by lex.
func New(lex Lexicon) *Segmenter {
	return &Segmenter{lex: lex}
}

// Segment returns text with single spaces inserted between recovered words.
// The case of text is preserved; lookups are case-insensitive.
func (s *Segmenter) Segment(text string) string {
	return strings.Join(s.Words(text), " ")
}

// Words returns the recovered words of text in order. Empty text yields nil.
func (s *Segmenter) Words(text string) []string {
	if text == "" {
		return nil
	}
	n, offsets := index(text)
	tr := s.trace(text, n, offsets)

	count := 0
	for i := n; i > 0; i -= tr.Split[i] {
		count++
	}
	words := make([]string, count)
	for i := n; i > 0; i -= tr.Split[i] {
		count--
		words[count] = text[offsets[i-tr.Split[i]]:offsets[i]]
	}
	return words
}

// Trace runs the forward pass only and returns its table.
func (s *Segmenter) Trace(text string) Trace {
	n, offsets := index(text)
	return s.trace(text, n, offsets)
}

func (s *Segmenter) trace(text string, n int, offsets []int) Trace {
	window := s.lex.MaxWordLength()
	if window < 1 {
		window = 1
	}
	tr := Trace{
		Cumulative: make([]Score, n+1),
		Split:      make([]int, n+1),
	}
	keyer := costmodel.NewKeyer()
	for i := 1; i <= n; i++ {
		limit := window
		if i < limit {
			limit = i
		}
		var best Score
		bestK := 0
		// k ascending with strict improvement keeps the shortest word on ties.
		for k := 1; k <= limit; k++ {
			cand := tr.Cumulative[i-k]
			if c, ok := s.lex.Cost(keyer.Key(text[offsets[i-k]:offsets[i]])); ok {
				cand.Cost += c
			} else {
				cand.Unknown += k
			}
			if bestK == 0 || cand.Less(best) {
				best, bestK = cand, k
			}
		}
		tr.Cumulative[i] = best
		tr.Split[i] = bestK
	}
	return tr
}

// index returns the rune count of text and the byte offset of every rune
// boundary, offsets[n] == len(text).
func index(text string) (int, []int) {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return len(offsets) - 1, offsets
}

// Segment splits text with a throwaway Segmenter over lex.
func Segment(text string, lex Lexicon) string {
	return New(lex).Segment(text)
}
