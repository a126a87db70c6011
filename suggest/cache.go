package suggest

import (
	"context"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

const defaultCacheEntries = 512

type cacheEntry struct {
	limit       int
	suggestions []string
}

// complete reports whether the backend returned everything it had.
func (e cacheEntry) complete() bool {
	return e.limit > 0 && len(e.suggestions) < e.limit
}

// Cache memoizes a Client by lowercased query. A cached answer for a shorter
// prefix that came back below its limit is complete, so longer queries are
// answered from it by filtering.
type Cache struct {
	next Client
	max  int

	mu      sync.Mutex
	trie    *patricia.Trie
	entries int
}

func NewCache(next Client, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &Cache{next: next, max: maxEntries, trie: patricia.NewTrie()}
}

func (c *Cache) Suggest(ctx context.Context, req Request) ([]string, error) {
	key := strings.ToLower(req.Query)
	if out, ok := c.lookup(key, req.Limit); ok {
		return out, nil
	}

	out, err := c.next.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store(key, req.Limit, out)
	return out, nil
}

// Len reports the number of cached queries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

func (c *Cache) lookup(key string, limit int) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item := c.trie.Get(patricia.Prefix(key)); item != nil {
		e := item.(cacheEntry)
		if e.limit == limit || e.complete() || (limit > 0 && len(e.suggestions) >= limit) {
			return truncate(e.suggestions, limit), true
		}
	}

	var (
		found []string
		ok    bool
	)
	_ = c.trie.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, item patricia.Item) error {
		e := item.(cacheEntry)
		if string(p) == key || !e.complete() {
			return nil
		}
		found = filterPrefix(e.suggestions, key)
		ok = true
		return nil
	})
	if !ok {
		return nil, false
	}
	return truncate(found, limit), true
}

func (c *Cache) store(key string, limit int, suggestions []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries >= c.max {
		c.trie = patricia.NewTrie()
		c.entries = 0
	}
	if c.trie.Get(patricia.Prefix(key)) == nil {
		c.entries++
	}
	cp := append([]string(nil), suggestions...)
	c.trie.Set(patricia.Prefix(key), cacheEntry{limit: limit, suggestions: cp})
}

func filterPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(strings.ToLower(w), prefix) {
			out = append(out, w)
		}
	}
	return out
}

func truncate(words []string, limit int) []string {
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return append([]string(nil), words...)
}
