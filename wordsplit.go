// Package wordsplit reconstructs spaces in text written without them,
// using word costs derived from a ranked corpus.
//
//	wordsplit.Split("thequickbrownfox") // "the quick brown fox"
//
// Split uses the embedded English corpus, built once per process. Use a
// LanguageModel for a custom corpus, or a Cache to share models keyed by
// corpus source.
package wordsplit

import (
	"context"
	"sync"

	"github.com/oarkflow/wordsplit/corpus"
	"github.com/oarkflow/wordsplit/costmodel"
	"github.com/oarkflow/wordsplit/segment"
)

var defaultSegmenter = sync.OnceValue(func() *segment.Segmenter {
	words, err := corpus.Default()
	if err != nil {
		panic(err)
	}
	m, err := costmodel.Build(words)
	if err != nil {
		panic(err)
	}
	return segment.New(m)
})

// Split segments text with the embedded corpus.
func Split(text string) string {
	return defaultSegmenter().Segment(text)
}

// LanguageModel segments text with the corpus at CorpusPath. An empty path
// selects the embedded corpus. The model is built on first use and reused.
type LanguageModel struct {
	CorpusPath string

	mu  sync.Mutex
	seg *segment.Segmenter
}

// NewLanguageModel builds the model for path immediately so that a missing or
// empty corpus fails here rather than on the first Split.
func NewLanguageModel(path string) (*LanguageModel, error) {
	lm := &LanguageModel{CorpusPath: path}
	if err := lm.Load(); err != nil {
		return nil, err
	}
	return lm, nil
}

// Load builds the model if it has not been built yet.
func (lm *LanguageModel) Load() error {
	_, err := lm.segmenter()
	return err
}

// Split segments text.
func (lm *LanguageModel) Split(text string) (string, error) {
	seg, err := lm.segmenter()
	if err != nil {
		return "", err
	}
	return seg.Segment(text), nil
}

func (lm *LanguageModel) segmenter() (*segment.Segmenter, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.seg != nil {
		return lm.seg, nil
	}
	m, err := BuildModel(context.Background(), lm.CorpusPath)
	if err != nil {
		return nil, err
	}
	lm.seg = segment.New(m)
	return lm.seg, nil
}

// BuildModel loads source with corpus.Open and builds a fresh model.
func BuildModel(ctx context.Context, source string) (*costmodel.Model, error) {
	words, err := corpus.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	return costmodel.Build(words)
}
