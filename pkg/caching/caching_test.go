package caching

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dtnitsch/kurvalgom/models"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "blacklist.txt"))
}

func TestPositiveCache(t *testing.T) {
	c := newTestCache(t)

	if _, ok := c.Get("La Boheme"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	first := models.EnrichedContent{Description: "first", Rating: "4.0"}
	second := models.EnrichedContent{Description: "second", Rating: "4.5"}
	c.Set("La Boheme", first, "https://example.com/a")
	c.Set("La Boheme", second, "https://example.com/b")

	got, ok := c.Get("La Boheme")
	if !ok {
		t.Fatal("Get() missed after Set()")
	}
	if got.Content.Description != "second" || got.URL != "https://example.com/b" {
		t.Errorf("Get() = %+v, want the last Set()", got)
	}
	if _, ok := c.Get("la boheme"); ok {
		t.Error("Get() matched a different case; keys are exact")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestBlacklist(t *testing.T) {
	c := newTestCache(t)

	listed, err := c.IsBlacklisted("Nowhere")
	if err != nil {
		t.Fatalf("IsBlacklisted() on missing file error = %v", err)
	}
	if listed {
		t.Error("IsBlacklisted() = true before any append")
	}

	for i := 0; i < 2; i++ {
		if err := c.AddToBlacklist("Nowhere"); err != nil {
			t.Fatalf("AddToBlacklist() error = %v", err)
		}
	}

	names, err := c.Blacklist()
	if err != nil {
		t.Fatalf("Blacklist() error = %v", err)
	}
	if len(names) != 2 {
		t.Errorf("Blacklist() has %d lines, want 2 (no dedup)", len(names))
	}

	listed, err = c.IsBlacklisted("Nowhere")
	if err != nil {
		t.Fatalf("IsBlacklisted() error = %v", err)
	}
	if !listed {
		t.Error("IsBlacklisted() = false after append")
	}
	if listed, _ := c.IsBlacklisted("Nowhere Else"); listed {
		t.Error("IsBlacklisted() matched a name that is only a prefix")
	}
}

func TestBlacklistSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	if err := NewCache(path).AddToBlacklist("Gone"); err != nil {
		t.Fatal(err)
	}

	c := NewCache(path)
	if c.Len() != 0 {
		t.Errorf("positive tier survived restart: Len() = %d", c.Len())
	}
	listed, err := c.IsBlacklisted("Gone")
	if err != nil || !listed {
		t.Errorf("IsBlacklisted() = %v, %v; want true, nil", listed, err)
	}

	data, err := os.ReadFile(c.BlacklistPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Gone\n" {
		t.Errorf("blacklist file = %q", data)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("r%d", i)
			c.Set(name, models.EnrichedContent{Description: name}, "")
			c.Get(name)
			if err := c.AddToBlacklist(name); err != nil {
				t.Errorf("AddToBlacklist() error = %v", err)
			}
			if _, err := c.IsBlacklisted(name); err != nil {
				t.Errorf("IsBlacklisted() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 20 {
		t.Errorf("Len() = %d, want 20", c.Len())
	}
	names, err := c.Blacklist()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 20 {
		t.Errorf("Blacklist() has %d lines, want 20", len(names))
	}
}
