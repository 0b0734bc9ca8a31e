package resultcache

import (
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"logomatch/internal/matcher"
)

// Cache maps a normalized query to its ranked candidates.
type Cache struct {
	store      *gocache.Cache
	maxEntries int
	// admit serializes the size check with the insert.
	admit sync.Mutex
}

// New returns an empty cache. maxEntries > 0 stops admitting new keys once the
// cache holds that many; existing keys are still served.
func New(maxEntries int) *Cache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Cache{
		store:      gocache.New(gocache.NoExpiration, 0),
		maxEntries: maxEntries,
	}
}

// Key normalizes a query the way the cache stores it.
func Key(query string) string {
	return strings.ToUpper(strings.TrimSpace(query))
}

// Get returns a copy of the cached candidates for query.
func (c *Cache) Get(query string) ([]matcher.Candidate, bool) {
	if c == nil {
		return nil, false
	}
	raw, ok := c.store.Get(Key(query))
	if !ok {
		return nil, false
	}
	candidates, ok := raw.([]matcher.Candidate)
	if !ok {
		return nil, false
	}
	return clone(candidates), true
}

// Put stores a copy of candidates under query. A racing writer for the same
// key overwrites with an equal value, so the last write is as good as any.
func (c *Cache) Put(query string, candidates []matcher.Candidate) {
	if c == nil {
		return
	}
	key := Key(query)
	c.admit.Lock()
	defer c.admit.Unlock()
	if c.maxEntries > 0 {
		if _, exists := c.store.Get(key); !exists && c.store.ItemCount() >= c.maxEntries {
			return
		}
	}
	c.store.Set(key, clone(candidates), gocache.NoExpiration)
}

// Len reports the number of cached queries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}

// Searcher is the part of the matcher the cache fronts.
type Searcher interface {
	Search(query string) []matcher.Candidate
}

// Lookup returns cached candidates for query, computing and storing them on a
// miss. The second result reports a cache hit. A nil cache always computes.
func Lookup(c *Cache, m Searcher, query string) ([]matcher.Candidate, bool) {
	if cached, ok := c.Get(query); ok {
		return cached, true
	}
	candidates := m.Search(query)
	c.Put(query, candidates)
	return candidates, false
}

func clone(in []matcher.Candidate) []matcher.Candidate {
	if in == nil {
		return []matcher.Candidate{}
	}
	out := make([]matcher.Candidate, len(in))
	copy(out, in)
	return out
}
