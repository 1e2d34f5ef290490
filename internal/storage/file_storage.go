// internal/storage/file_storage.go
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStorage reads and writes files below BaseDir with per-file locks and
// a small content cache.
type FileStorage struct {
	BaseDir string

	fileLocks sync.Map // path -> *sync.RWMutex

	cache        map[string]*CacheEntry
	cacheMutex   sync.RWMutex
	cacheExpiry  time.Duration
	maxCacheSize int
}

// CacheEntry is one cached file.
type CacheEntry struct {
	Data      []byte
	Timestamp time.Time
	ModTime   time.Time
}

// NewFileStorage creates storage rooted at baseDir, creating it if needed.
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStorage{
		BaseDir:      baseDir,
		cache:        make(map[string]*CacheEntry),
		cacheExpiry:  5 * time.Minute,
		maxCacheSize: 100,
	}, nil
}

func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Path joins a slash-separated relative path onto BaseDir.
func (fs *FileStorage) Path(rel string) string {
	return filepath.Join(fs.BaseDir, filepath.FromSlash(rel))
}

// SaveFile writes content atomically through a temp file.
func (fs *FileStorage) SaveFile(rel string, content []byte) error {
	fullPath := fs.Path(rel)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save file: %w", err)
	}

	fs.invalidateCache(fullPath)
	return nil
}

// LoadFile reads a regular file, serving unchanged files from the cache.
func (fs *FileStorage) LoadFile(rel string) ([]byte, error) {
	fullPath := fs.Path(rel)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", rel)
	}

	if data, ok := fs.cached(fullPath, info.ModTime()); ok {
		return data, nil
	}

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	fs.updateCache(fullPath, content, info.ModTime())
	return content, nil
}

// FileExists reports whether rel names a regular file.
func (fs *FileStorage) FileExists(rel string) bool {
	info, err := os.Stat(fs.Path(rel))
	return err == nil && info.Mode().IsRegular()
}

// Invalidate drops cache entries at or below the absolute or relative path.
func (fs *FileStorage) Invalidate(path string) {
	if !filepath.IsAbs(path) {
		path = fs.Path(path)
	}
	fs.removeCacheEntriesWithPrefix(path)
}

func (fs *FileStorage) cached(fullPath string, modTime time.Time) ([]byte, bool) {
	fs.cacheMutex.RLock()
	defer fs.cacheMutex.RUnlock()

	entry, exists := fs.cache[fullPath]
	if !exists || time.Since(entry.Timestamp) >= fs.cacheExpiry || !entry.ModTime.Equal(modTime) {
		return nil, false
	}
	return entry.Data, true
}

func (fs *FileStorage) updateCache(path string, data []byte, modTime time.Time) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	fs.cache[path] = &CacheEntry{Data: data, Timestamp: time.Now(), ModTime: modTime}
	fs.enforceMaxCacheSizeLocked()
}

func (fs *FileStorage) removeCacheEntriesWithPrefix(prefix string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	for key := range fs.cache {
		if key == prefix || strings.HasPrefix(key, prefix+string(filepath.Separator)) {
			delete(fs.cache, key)
		}
	}
}

func (fs *FileStorage) invalidateCache(path string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()
	delete(fs.cache, path)
}

// StartCacheCleanup evicts expired entries until ctx is done.
func (fs *FileStorage) StartCacheCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(2 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fs.cleanupExpiredCache()
			}
		}
	}()
}

func (fs *FileStorage) cleanupExpiredCache() {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	now := time.Now()
	for path, entry := range fs.cache {
		if now.Sub(entry.Timestamp) > fs.cacheExpiry {
			delete(fs.cache, path)
		}
	}
}

// enforceMaxCacheSizeLocked removes the oldest entries over the limit.
func (fs *FileStorage) enforceMaxCacheSizeLocked() {
	if len(fs.cache) <= fs.maxCacheSize {
		return
	}

	type cacheEntryWithTime struct {
		key       string
		timestamp time.Time
	}
	entries := make([]cacheEntryWithTime, 0, len(fs.cache))
	for key, entry := range fs.cache {
		entries = append(entries, cacheEntryWithTime{key: key, timestamp: entry.Timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})

	for i := 0; i < len(entries)-fs.maxCacheSize; i++ {
		delete(fs.cache, entries[i].key)
	}
}
