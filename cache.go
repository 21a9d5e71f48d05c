package wordsplit

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/oarkflow/wordsplit/corpus"
	"github.com/oarkflow/wordsplit/costmodel"
)

// DefaultCacheSize bounds the shared cache.
const DefaultCacheSize = 16

// BuildFunc loads and builds the model for a corpus source.
type BuildFunc func(ctx context.Context, source string) (*costmodel.Model, error)

// Cache keeps built models keyed by normalized corpus source. Concurrent
// requests for the same missing source share one build.
type Cache struct {
	models *lru.Cache[string, *costmodel.Model]
	group  singleflight.Group
	build  BuildFunc
}

// NewCache returns a Cache holding at most size models. A nil build uses
// BuildModel.
func NewCache(size int, build BuildFunc) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if build == nil {
		build = BuildModel
	}
	models, err := lru.New[string, *costmodel.Model](size)
	if err != nil {
		return nil, err
	}
	return &Cache{models: models, build: build}, nil
}

// Model returns the cached model for source, building it on a miss.
// Failed builds are not cached. The build is shared by every caller waiting
// on source, so it does not stop when one caller's ctx is cancelled.
func (c *Cache) Model(ctx context.Context, source string) (*costmodel.Model, error) {
	key := corpus.Normalize(source)
	if m, ok := c.models.Get(key); ok {
		return m, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if m, ok := c.models.Get(key); ok {
			return m, nil
		}
		m, err := c.build(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.models.Add(key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*costmodel.Model), nil
}

// Put replaces the model cached for source.
func (c *Cache) Put(source string, m *costmodel.Model) {
	c.models.Add(corpus.Normalize(source), m)
}

// Forget drops source from the cache.
func (c *Cache) Forget(source string) {
	c.models.Remove(corpus.Normalize(source))
}

// Len is the number of cached models.
func (c *Cache) Len() int { return c.models.Len() }

var (
	sharedOnce sync.Once
	shared     *Cache
)

// Default returns the process-wide cache.
func Default() *Cache {
	sharedOnce.Do(func() {
		shared, _ = NewCache(DefaultCacheSize, nil)
	})
	return shared
}
