package segment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SplitBatch segments texts concurrently with at most workers goroutines
// (GOMAXPROCS when workers <= 0). Results keep the order of texts. ctx is
// checked between items; a single segmentation always runs to completion.
func SplitBatch(ctx context.Context, seg *Segmenter, texts []string, workers int) ([]string, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = seg.Segment(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
