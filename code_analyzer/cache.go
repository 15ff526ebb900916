package code_analyzer

import (
	"sync"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/zeebo/xxh3"
)

type symbolCacheEntry struct {
	hash    uint64
	symbols []models.Symbol
}

// SymbolCache keeps extracted declarations per file, keyed by path and content hash,
// so repeated prompts in one session parse each file once.
type SymbolCache struct {
	mutex   sync.RWMutex
	entries map[string]symbolCacheEntry
	hits    int
	misses  int
}

func NewSymbolCache() *SymbolCache {
	return &SymbolCache{entries: make(map[string]symbolCacheEntry)}
}

// Get returns the cached symbols for path if content is unchanged since Set.
func (c *SymbolCache) Get(path string, content []byte) ([]models.Symbol, bool) {
	hash := xxh3.Hash(content)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.hash != hash {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.symbols, true
}

func (c *SymbolCache) Set(path string, content []byte, symbols []models.Symbol) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[path] = symbolCacheEntry{hash: xxh3.Hash(content), symbols: symbols}
}

func (c *SymbolCache) Stats() models.CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return models.CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

func (c *SymbolCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]symbolCacheEntry)
	c.hits = 0
	c.misses = 0
}
