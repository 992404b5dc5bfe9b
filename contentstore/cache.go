package contentstore

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL read-through cache over a Source. The published list is
// loaded as a whole; single-article lookups are served from it.
type Cache struct {
	mu       sync.RWMutex
	articles []Article
	fetched  time.Time
	ttl      time.Duration
	src      Source
	now      func() time.Time
}

// NewCache wraps src with a cache that reloads after ttl.
func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

func (c *Cache) valid() bool {
	return c.articles != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.mu.Unlock()
}

// ensureLoaded tries a read lock first and only takes the write lock when a
// reload is needed.
func (c *Cache) ensureLoaded(ctx context.Context) ([]Article, error) {
	c.mu.RLock()
	if c.valid() {
		articles := c.articles
		c.mu.RUnlock()
		return articles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.articles, nil
	}
	articles, err := c.src.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []Article{}
	}
	c.articles = articles
	c.fetched = c.now()
	return c.articles, nil
}

// ListPublished returns the cached published list.
func (c *Cache) ListPublished(ctx context.Context) ([]Article, error) {
	return c.ensureLoaded(ctx)
}

// GetArticle returns a cached published article by slug.
func (c *Cache) GetArticle(ctx context.Context, slug string) (Article, error) {
	articles, err := c.ensureLoaded(ctx)
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}
