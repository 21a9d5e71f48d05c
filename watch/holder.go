package watch

import (
	"sync/atomic"
	"time"

	"github.com/oarkflow/wordsplit/costmodel"
	"github.com/oarkflow/wordsplit/segment"
)

// Snapshot is one immutable loaded model.
type Snapshot struct {
	Source    string
	Model     *costmodel.Model
	Segmenter *segment.Segmenter
	LoadedAt  time.Time
}

// Holder publishes the current Snapshot. Readers never block; a swap
// replaces the whole snapshot.
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// NewHolder returns a Holder serving m.
func NewHolder(source string, m *costmodel.Model) *Holder {
	h := &Holder{}
	h.Store(source, m)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Snapshot { return h.cur.Load() }

// Store publishes m as the current model.
func (h *Holder) Store(source string, m *costmodel.Model) *Snapshot {
	s := &Snapshot{
		Source:    source,
		Model:     m,
		Segmenter: segment.New(m),
		LoadedAt:  time.Now(),
	}
	h.cur.Store(s)
	return s
}
