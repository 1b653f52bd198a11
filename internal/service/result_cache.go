package service

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

type resultCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
}

type resultCacheEntry struct {
	key       string
	summary   string
	expiresAt time.Time
}

func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	if maxEntries <= 0 || ttl <= 0 {
		return nil
	}

	return &resultCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// resultKey identifies a document by content hash.
func resultKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))

	return hex.EncodeToString(sum[:])
}

func (c *resultCache) get(key string, now time.Time) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry, ok := elem.Value.(*resultCacheEntry)
	if !ok {
		return "", false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.summary, true
}

func (c *resultCache) set(key string, summary string, now time.Time) {
	if c == nil || key == "" || summary == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := now.Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*resultCacheEntry)
		if !castOk {
			return
		}

		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&resultCacheEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
}

func (c *resultCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		entry, ok := elem.Value.(*resultCacheEntry)
		if ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}

		elem = prev
	}
}

func (c *resultCache) enforceSizeLimitLocked() {
	for c.order.Len() > c.maxEntries {
		back := c.order.Back()
		if back == nil {
			return
		}

		c.removeElement(back)
	}
}

func (c *resultCache) removeElement(elem *list.Element) {
	if entry, ok := elem.Value.(*resultCacheEntry); ok {
		delete(c.entries, entry.key)
	}

	c.order.Remove(elem)
}
