// Package corpus loads ranked word lists: one word per line, most frequent
// first. Line order is the rank and is preserved as read.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed default.txt
var defaultList []byte

// DefaultSource names the embedded word list.
const DefaultSource = "embedded:default"

var (
	// ErrEmptyCorpus is returned when a source yields no words.
	ErrEmptyCorpus = errors.New("corpus: no words")
	// ErrUnsupportedSource is returned by Open for an unknown scheme.
	ErrUnsupportedSource = errors.New("corpus: unsupported source")
)

// Default returns the embedded word list: a few thousand common English
// words by rough frequency. Larger corpora are loaded with Open.
func Default() ([]string, error) {
	words, err := Read(bytes.NewReader(defaultList))
	if err != nil {
		return nil, fmt.Errorf("embedded corpus: %w", err)
	}
	return words, nil
}

// LoadFile reads a word list from path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()
	words, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return words, nil
}

// Read parses a word list from r. A leading UTF-8 BOM, surrounding
// whitespace and blank lines are dropped. An empty result is ErrEmptyCorpus.
func Read(r io.Reader) ([]string, error) {
	var words []string
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scan.Scan() {
		line := scan.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		w := strings.TrimSpace(line)
		if w != "" {
			words = append(words, w)
		}
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}
	return words, nil
}

// Open loads the word list named by source:
//
//	""  or "embedded:default"       embedded list
//	"sqlite://<dsn>[#table]"        SQLite table with rank and word columns
//	"file:<path>" or a bare path    text file
func Open(ctx context.Context, source string) ([]string, error) {
	switch {
	case source == "" || source == DefaultSource:
		return Default()
	case strings.HasPrefix(source, "sqlite://"):
		dsn, table, _ := strings.Cut(strings.TrimPrefix(source, "sqlite://"), "#")
		return LoadSQLite(ctx, dsn, table)
	case strings.HasPrefix(source, "file:"):
		return LoadFile(strings.TrimPrefix(source, "file:"))
	case strings.HasPrefix(source, "embedded:"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	default:
		return LoadFile(source)
	}
}

// Normalize maps source to the key under which its model is cached.
func Normalize(source string) string {
	switch {
	case source == "":
		return DefaultSource
	case strings.HasPrefix(source, "file:"):
		return strings.TrimPrefix(source, "file:")
	}
	return source
}
