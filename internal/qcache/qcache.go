// Package qcache provides an LRU+TTL cache for validated query plans,
// adapted from NornicDB's Cypher query-plan cache (pkg/cache/query_cache.go)
// to key on the canonical query string hash instead of raw Cypher text.
//
// Unlike a Cypher plan (invalidated only by schema change), a validated
// FTS plan embeds document-frequency-dependent decisions: selectBestPath's
// tokenization choice and each node's Calculator are primed from
// InvertedFile DF at validate time (spec.md §4.2.10, §4.3 step 2). Indexing
// a new document shifts those frequencies, so this cache adds a
// generation counter the teacher's cache has no equivalent of: Invalidate
// bumps it, and any entry stamped with an older generation is treated as a
// miss and evicted on next Get, instead of serving a plan validated
// against frequencies that no longer hold.
package qcache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orneryd/nornicdb/internal/qnode"
)

// PlanCache is a thread-safe LRU cache of validated query-tree roots,
// keyed by the canonical query string hash validate.CanonicalKey
// produces. Caching a validated plan avoids re-running the eight-pass
// rewrite (spec.md §4.3) for a repeated query.
type PlanCache struct {
	mu sync.RWMutex

	maxSize int
	ttl     time.Duration
	enabled bool

	list  *list.List
	items map[string]*list.Element

	hits       uint64
	misses     uint64
	generation uint64
}

type cacheEntry struct {
	key        string
	plan       qnode.Node
	expiresAt  time.Time
	generation uint64
}

// NewPlanCache creates a plan cache bounded to maxSize entries, each
// valid for ttl (0 disables expiration).
func NewPlanCache(maxSize int, ttl time.Duration) *PlanCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &PlanCache{
		maxSize: maxSize,
		ttl:     ttl,
		enabled: true,
		list:    list.New(),
		items:   make(map[string]*list.Element, maxSize),
	}
}

func (c *PlanCache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Get returns the cached plan for key, or ok=false on miss or expiry.
func (c *PlanCache) Get(key string) (qnode.Node, bool) {
	c.mu.RLock()
	enabled := c.enabled
	elem, ok := c.items[key]
	c.mu.RUnlock()

	if !enabled || !ok {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	expired := c.ttl > 0 && time.Now().After(entry.expiresAt)
	stale := entry.generation != atomic.LoadUint64(&c.generation)
	if expired || stale {
		c.mu.Lock()
		c.removeElement(elem)
		c.mu.Unlock()
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	c.mu.Lock()
	c.list.MoveToFront(elem)
	c.mu.Unlock()
	atomic.AddUint64(&c.hits, 1)
	return entry.plan, true
}

// Put caches plan under key, evicting the least recently used entry if
// the cache is at capacity.
func (c *PlanCache) Put(key string, plan qnode.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	gen := atomic.LoadUint64(&c.generation)
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.plan = plan
		entry.generation = gen
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.list.MoveToFront(elem)
		return
	}
	for c.list.Len() >= c.maxSize {
		c.evictOldest()
	}
	entry := &cacheEntry{key: key, plan: plan, generation: gen}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.items[key] = c.list.PushFront(entry)
}

// Invalidate marks every currently cached plan stale without walking the
// cache: the next Get against each entry evicts it as a miss. Callers
// invoke this after indexing a document, since the DF figures a cached
// plan was validated against are no longer current (see package doc).
func (c *PlanCache) Invalidate() {
	atomic.AddUint64(&c.generation, 1)
}

func (c *PlanCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

func (c *PlanCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Init()
	c.items = make(map[string]*list.Element, c.maxSize)
}

func (c *PlanCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Len()
}

func (c *PlanCache) removeElement(elem *list.Element) {
	c.list.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
}

func (c *PlanCache) evictOldest() {
	oldest := c.list.Back()
	if oldest != nil {
		c.removeElement(oldest)
	}
}

// Stats reports cache performance counters.
type Stats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

func (c *PlanCache) Stats() Stats {
	hits := atomic.LoadUint64(&c.hits)
	misses := atomic.LoadUint64(&c.misses)
	c.mu.RLock()
	size := c.list.Len()
	c.mu.RUnlock()
	total := hits + misses
	var rate float64
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return Stats{Size: size, MaxSize: c.maxSize, Hits: hits, Misses: misses, HitRate: rate}
}
