package cache

import (
	"container/list"
	"sync"
	"time"
)

// TaggedCache is an LRU cache with TTL expiry and tag-based invalidation.
// Entries carry a set of tags; InvalidateTags drops every entry sharing a
// tag, which lets writers evict all cached views for a workspace without
// knowing the individual keys. Safe for concurrent use.
type TaggedCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	byTag   map[string]map[string]struct{}
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	tags      []string
	expiresAt time.Time
}

// NewTagged creates a TaggedCache holding at most maxSize entries, each
// expiring ttl after being set
func NewTagged[T any](maxSize int, ttl time.Duration) *TaggedCache[T] {
	return &TaggedCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		byTag:   make(map[string]map[string]struct{}),
		lru:     list.New(),
	}
}

// Get retrieves a value; expired entries count as misses
func (c *TaggedCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

// Set stores a value under the key with the given tags
func (c *TaggedCache[T]) Set(key string, data T, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		tags:      tags,
		expiresAt: time.Now().Add(c.ttl),
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem
	for _, tag := range tags {
		if c.byTag[tag] == nil {
			c.byTag[tag] = make(map[string]struct{})
		}
		c.byTag[tag][key] = struct{}{}
	}

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes a single key
func (c *TaggedCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// InvalidateTags removes every entry carrying any of the given tags
func (c *TaggedCache[T]) InvalidateTags(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tag := range tags {
		for key := range c.byTag[tag] {
			if elem, exists := c.items[key]; exists {
				c.removeElement(elem)
			}
		}
	}
}

// Size returns the current number of entries
func (c *TaggedCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *TaggedCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

func (c *TaggedCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	for _, tag := range item.tags {
		if keys, ok := c.byTag[tag]; ok {
			delete(keys, item.key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
	c.lru.Remove(elem)
}
