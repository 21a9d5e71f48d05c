// Package costmodel turns a ranked word list into per-word costs.
//
// A word at rank idx (0-based) out of N words costs ln((idx+1) * ln(N)).
// Lower cost means more probable. A Model is immutable once built and may be
// shared by any number of goroutines.
package costmodel

import (
	"errors"
	"math"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyCorpus is returned by Build for an empty word list.
var ErrEmptyCorpus = errors.New("costmodel: empty corpus")

// Model maps lowercase words to costs.
type Model struct {
	costs   map[string]float64
	maxLen  int
	entries int
}

// Build computes a Model from words in rank order. When two entries share a
// lookup key the earlier rank is kept.
func Build(words []string) (*Model, error) {
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}
	n := float64(len(words))
	logN := math.Log(n)
	m := &Model{
		costs:   make(map[string]float64, len(words)),
		entries: len(words),
	}
	lower := cases.Lower(language.Und)
	for idx, w := range words {
		key := norm.NFC.String(lower.String(w))
		// Decomposed input spells the same key with more runes.
		l := max(utf8.RuneCountInString(w), utf8.RuneCountInString(norm.NFD.String(key)))
		if l > m.maxLen {
			m.maxLen = l
		}
		if _, dup := m.costs[key]; dup {
			continue
		}
		m.costs[key] = math.Log(float64(idx+1) * logN)
	}
	return m, nil
}

// Cost returns the cost of an already normalized key. ok is false for
// unknown words.
func (m *Model) Cost(key string) (cost float64, ok bool) {
	cost, ok = m.costs[key]
	return
}

// MaxWordLength is the longest word in runes, counting the decomposed
// spelling of each key.
func (m *Model) MaxWordLength() int { return m.maxLen }

// Len is the number of entries the model was built from, duplicates included.
func (m *Model) Len() int { return m.entries }

// Keyer lowercases and NFC-normalizes candidate words the way Build does.
// A Keyer is not safe for concurrent use; create one per goroutine.
type Keyer struct {
	lower cases.Caser
}

// NewKeyer returns a Keyer matching Build's normalization.
func NewKeyer() *Keyer {
	return &Keyer{lower: cases.Lower(language.Und)}
}

// Key normalizes s for lookup.
func (k *Keyer) Key(s string) string {
	if isLowerASCII(s) {
		return s
	}
	return norm.NFC.String(k.lower.String(s))
}

// Key normalizes s with a throwaway Keyer.
func Key(s string) string { return NewKeyer().Key(s) }

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || ('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
