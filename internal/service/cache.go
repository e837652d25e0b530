package service

import (
	"sync"
	"time"
)

// ResultCache is a process-scoped TTL cache of completed analysis results,
// keyed by (userID, inputHash). Only completed results are ever stored; a
// failed or partial analysis never lands here.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	stop    chan struct{}
}

type cacheEntry struct {
	result    *AnalysisResult
	expiresAt time.Time
}

// NewResultCache creates a cache whose entries expire after ttl and starts a
// background janitor. Call Close on shutdown.
func NewResultCache(ttl time.Duration) *ResultCache {
	c := &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the cached result for the key, or nil if absent or expired.
func (c *ResultCache) Get(key string) *AnalysisResult {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.result
}

// Set stores a result under the key with the configured TTL.
func (c *ResultCache) Set(key string, result *AnalysisResult) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of live (unexpired) entries.
func (c *ResultCache) Len() int {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the janitor goroutine.
func (c *ResultCache) Close() {
	close(c.stop)
}

func (c *ResultCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
