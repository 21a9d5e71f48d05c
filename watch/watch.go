// Package watch rebuilds the cost model when its corpus file changes and
// swaps the new model into a Holder. A failed rebuild keeps the old model.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oarkflow/wordsplit/costmodel"
)

// DefaultDebounce collapses bursts of file events into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// BuildFunc produces a fresh model for path.
type BuildFunc func(ctx context.Context, path string) (*costmodel.Model, error)

type Watcher struct {
	path     string
	source   string
	holder   *Holder
	build    BuildFunc
	debounce time.Duration
	logger   *slog.Logger
	onBuild  func(words int, err error)
	watcher  *fsnotify.Watcher
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// WithBuildHook is called after every rebuild attempt.
func WithBuildHook(fn func(words int, err error)) Option {
	return func(w *Watcher) { w.onBuild = fn }
}

// New watches the directory containing path. Editors often replace files
// by rename, so the directory rather than the file is watched. Reloaded
// snapshots keep the source the holder was created with.
func New(path string, holder *Holder, build BuildFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	source := path
	if cur := holder.Load(); cur != nil && cur.Source != "" {
		source = cur.Source
	}
	w := &Watcher{
		path:     abs,
		source:   source,
		holder:   holder,
		build:    build,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.watcher = fw
	return w, nil
}

// Run handles events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching corpus", slog.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("corpus event", slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
			pending = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.String("err", err.Error()))
		case <-pending:
			pending = nil
			w.Rebuild(ctx)
		}
	}
}

// Rebuild builds a model from the watched path and publishes it on success.
func (w *Watcher) Rebuild(ctx context.Context) error {
	m, err := w.build(ctx, w.path)
	if w.onBuild != nil {
		words := 0
		if m != nil {
			words = m.Len()
		}
		w.onBuild(words, err)
	}
	if err != nil {
		w.logger.Error("corpus rebuild failed; keeping previous model",
			slog.String("path", w.path), slog.String("err", err.Error()))
		return err
	}
	w.holder.Store(w.source, m)
	w.logger.Info("corpus reloaded", slog.String("source", w.source), slog.Int("words", m.Len()))
	return nil
}
