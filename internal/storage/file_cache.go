// internal/storage/file_cache.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// PayloadCache keeps decoded scenario files in memory. Entries are reused
// while the file's size and modification time are unchanged.
type PayloadCache struct {
	cache   map[string]*PayloadEntry
	mutex   sync.RWMutex
	maxSize int
}

// PayloadEntry is one decoded file.
type PayloadEntry struct {
	Payload  interface{}
	LastRead time.Time
	ModTime  time.Time
	Size     int64
}

// NewPayloadCache creates a cache holding at most maxSize files.
func NewPayloadCache(maxSize int) *PayloadCache {
	if maxSize <= 0 {
		maxSize = 500
	}
	return &PayloadCache{
		cache:   make(map[string]*PayloadEntry),
		maxSize: maxSize,
	}
}

// Load returns the decoded contents of a JSON or YAML file.
func (c *PayloadCache) Load(path string) (interface{}, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	entry, exists := c.cache[absPath]
	if exists && entry.ModTime.Equal(info.ModTime()) && entry.Size == info.Size() {
		entry.LastRead = time.Now()
		c.mutex.Unlock()
		return entry.Payload, nil
	}
	c.mutex.Unlock()

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	payload, err := DecodePayload(absPath, data)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.cache[absPath] = &PayloadEntry{
		Payload:  payload,
		LastRead: time.Now(),
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}
	if len(c.cache) > c.maxSize {
		c.cleanupLRU(max(1, c.maxSize/5))
	}
	c.mutex.Unlock()

	return payload, nil
}

// DecodePayload parses data as YAML for .yaml/.yml paths and JSON otherwise.
func DecodePayload(path string, data []byte) (interface{}, error) {
	var payload interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse YAML %s: %w", filepath.Base(path), err)
		}
	default:
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to parse JSON %s: %w", filepath.Base(path), err)
		}
	}
	return payload, nil
}

// Delete drops a single entry.
func (c *PayloadCache) Delete(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mutex.Lock()
	delete(c.cache, absPath)
	c.mutex.Unlock()
}

// Clear drops every entry.
func (c *PayloadCache) Clear() {
	c.mutex.Lock()
	c.cache = make(map[string]*PayloadEntry)
	c.mutex.Unlock()
}

// Len returns the number of cached files.
func (c *PayloadCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// cleanupLRU evicts the count least recently read entries.
func (c *PayloadCache) cleanupLRU(count int) {
	type keyAge struct {
		key  string
		time time.Time
	}

	entries := make([]keyAge, 0, len(c.cache))
	for k, v := range c.cache {
		entries = append(entries, keyAge{k, v.LastRead})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].time.Before(entries[j].time)
	})

	for i := 0; i < min(count, len(entries)); i++ {
		delete(c.cache, entries[i].key)
	}
}
