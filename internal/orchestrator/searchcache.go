package orchestrator

import (
	"sync"

	"github.com/soundlink/conductor/internal/track"
)

// searchCache is a small append-log of (query -> result) pairs used to avoid
// redundant lookups within the process lifetime. Lookup is a linear scan by
// exact string equality and nothing ever evicts; intentionally simple, a
// persistent bounded layer sits behind it in the redis store.
type searchCache struct {
	mu      sync.Mutex
	entries []cacheEntry
}

type cacheEntry struct {
	query  string
	result *track.LoadResult
}

func newSearchCache() *searchCache {
	return &searchCache{}
}

func (c *searchCache) get(query string) (*track.LoadResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.query == query {
			return e.result, true
		}
	}
	return nil, false
}

func (c *searchCache) put(query string, result *track.LoadResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, cacheEntry{query: query, result: result})
}

func (c *searchCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
