package engine

import (
	"sync"

	"github.com/warrantylens/warrantylens/internal/core"
)

// ResultCache is an in-memory, process-lifetime map of serial to the latest
// successful result. It is consulted before dispatching a network lookup and
// only ever records successes. Unlike the durable store it is not persisted:
// a restart clears it.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]*core.QueryResult
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{results: make(map[string]*core.QueryResult)}
}

// Lookup returns the cached success for the serial, or nil.
func (c *ResultCache) Lookup(serial string) *core.QueryResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.results[serial]
}

// Record stores the result only if it is a success.
func (c *ResultCache) Record(result *core.QueryResult) {
	if !result.Success() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[result.Serial] = result
}

// Len returns the number of cached successes.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}
