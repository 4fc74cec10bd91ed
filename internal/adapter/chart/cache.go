package chart

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
	"github.com/couchcryptid/climate-dashboard/internal/observability"
)

// renderer is satisfied by Renderer; tests substitute a counting fake.
type renderer interface {
	Render(report domain.Report, name Name, format Format) ([]byte, error)
}

// CachedRenderer wraps a renderer with an in-memory LRU of encoded images.
type CachedRenderer struct {
	inner   renderer
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedRenderer creates a cache decorator around a renderer.
func NewCachedRenderer(inner renderer, maxEntries int, metrics *observability.Metrics) *CachedRenderer {
	return &CachedRenderer{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

// Render returns the cached image for this report, chart and format, rendering
// it on a miss. Entries are keyed by the report's generation time so a newer
// report never reuses an older image.
func (c *CachedRenderer) Render(report domain.Report, name Name, format Format) ([]byte, error) {
	key := fmt.Sprintf("%s.%s@%d", name, format, report.GeneratedAt.UnixNano())
	if img, ok := c.cache.get(key); ok {
		c.metrics.ChartCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	c.metrics.ChartCache.WithLabelValues("miss").Inc()

	img, err := c.inner.Render(report, name, format)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, img)
	return img, nil
}

// lruCache is a simple thread-safe LRU cache of encoded images.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []byte
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
