package caching

import (
	"fmt"
	"sync"

	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/storage"
)

// Entry is a positively resolved restaurant.
type Entry struct {
	Content models.EnrichedContent
	URL     string
}

// Cache is the two-tier resolution cache keyed by exact restaurant name.
// The positive tier lives in memory for the life of the process. The
// negative tier (blacklist) is an append-only text file, one name per line.
type Cache struct {
	mu       sync.RWMutex
	positive map[string]Entry

	blMu          sync.Mutex
	blacklistPath string
	store         *storage.Storage
}

// NewCache creates an empty positive cache backed by the blacklist file at
// blacklistPath. The file is created on first append.
func NewCache(blacklistPath string) *Cache {
	return &Cache{
		positive:      make(map[string]Entry),
		blacklistPath: blacklistPath,
		store:         &storage.Storage{},
	}
}

// Get looks up a resolved restaurant.
func (c *Cache) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.positive[name]
	return e, ok
}

// Set overwrites the entry for name.
func (c *Cache) Set(name string, content models.EnrichedContent, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positive[name] = Entry{Content: content, URL: url}
}

// Len returns the number of positively cached names.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.positive)
}

// IsBlacklisted reads the whole blacklist file and reports whether name is
// on any line. A missing file means nothing is blacklisted.
func (c *Cache) IsBlacklisted(name string) (bool, error) {
	c.blMu.Lock()
	defer c.blMu.Unlock()

	lines, err := c.store.ReadLines(c.blacklistPath)
	if err != nil {
		return false, fmt.Errorf("failed to read blacklist: %w", err)
	}
	for _, line := range lines {
		if line == name {
			return true, nil
		}
	}
	return false, nil
}

// AddToBlacklist appends name to the blacklist file. Names are not
// deduplicated.
func (c *Cache) AddToBlacklist(name string) error {
	c.blMu.Lock()
	defer c.blMu.Unlock()

	if err := c.store.AppendLine(c.blacklistPath, name); err != nil {
		return fmt.Errorf("failed to append to blacklist: %w", err)
	}
	return nil
}

// Blacklist returns every line of the blacklist file in file order.
func (c *Cache) Blacklist() ([]string, error) {
	c.blMu.Lock()
	defer c.blMu.Unlock()

	lines, err := c.store.ReadLines(c.blacklistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read blacklist: %w", err)
	}
	return lines, nil
}

// BlacklistPath returns the path of the durable negative cache.
func (c *Cache) BlacklistPath() string {
	return c.blacklistPath
}
