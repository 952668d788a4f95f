package content

import (
	"io/fs"
	"slices"
	"sync"
	"time"
)

// ParseCache remembers parsed files keyed by path, modification time and
// size, so unchanged files are not re-read on every listing. It is safe
// for concurrent use.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]parseEntry
}

type parseEntry struct {
	modTime time.Time
	size    int64
	post    Post
	valid   bool
}

// NewParseCache returns an empty cache.
func NewParseCache() *ParseCache {
	return &ParseCache{entries: make(map[string]parseEntry)}
}

func (c *ParseCache) lookup(path string, info fs.FileInfo) (Post, bool, bool) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok || !e.modTime.Equal(info.ModTime()) || e.size != info.Size() {
		return Post{}, false, false
	}
	p := e.post
	p.Tags = slices.Clone(p.Tags)
	return p, e.valid, true
}

func (c *ParseCache) store(path string, info fs.FileInfo, post Post, valid bool) {
	c.mu.Lock()
	c.entries[path] = parseEntry{modTime: info.ModTime(), size: info.Size(), post: post, valid: valid}
	c.mu.Unlock()
}

// retain drops entries for paths not in keep.
func (c *ParseCache) retain(keep map[string]struct{}) {
	c.mu.Lock()
	for path := range c.entries {
		if _, ok := keep[path]; !ok {
			delete(c.entries, path)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of cached files.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *ParseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]parseEntry)
	c.mu.Unlock()
}
