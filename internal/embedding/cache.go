package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEmptyText is returned when the input normalizes to the empty string.
// Callers treat it as "no opinion", not a failure.
var ErrEmptyText = errors.New("empty text")

// CacheKey normalizes text into its cache key form.
func CacheKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Cache is a durable map from normalized text to embedding vectors,
// persisted as a flat JSON object. Entries are append-only within a run.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string][]float32
	dirty   bool
}

// LoadCache loads the cache file at path, creating an empty cache when the
// file is missing. An unreadable or corrupt file is discarded and rebuilt
// from scratch; the cache format carries no schema version.
func LoadCache(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string][]float32),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not load embedding cache", "path", path, "error", err)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("discarding corrupt embedding cache", "path", path, "error", err)
		c.entries = make(map[string][]float32)
	}

	return c
}

// Get returns the cached vector for the normalized key, if present.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a vector under the normalized key.
func (c *Cache) Put(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = vector
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush writes the cache to disk if it has unsaved entries.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encode embedding cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write embedding cache: %w", err)
	}

	c.dirty = false
	return nil
}

// Compile-time interface check
var _ Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder wraps an Embedder with the durable Cache. Lookups hit the
// cache first; misses call the underlying service and persist the result.
// Service failures leave the cache unchanged.
type CachedEmbedder struct {
	embedder Embedder
	cache    *Cache
}

// NewCachedEmbedder creates a CachedEmbedder over the given service and cache.
func NewCachedEmbedder(embedder Embedder, cache *Cache) *CachedEmbedder {
	return &CachedEmbedder{embedder: embedder, cache: cache}
}

// Embed returns the embedding for text, consulting the cache first.
// Blank input returns ErrEmptyText without a lookup.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(text)
	if key == "" {
		return nil, ErrEmptyText
	}

	if v, ok := e.cache.Get(key); ok {
		return v, nil
	}

	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Put(key, vector)
	if err := e.cache.Flush(); err != nil {
		// The vector is still usable in-memory; durability is best effort.
		slog.Warn("could not save embedding cache", "error", err)
	}

	return vector, nil
}

// EmbedBatch embeds texts not yet cached in a single service call and
// returns vectors in input order. Blank inputs yield nil vectors.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		key := CacheKey(text)
		if key == "" {
			continue
		}
		if v, ok := e.cache.Get(key); ok {
			results[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return results, nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	for j, vector := range vectors {
		results[missingIdx[j]] = vector
		e.cache.Put(CacheKey(missing[j]), vector)
	}
	if err := e.cache.Flush(); err != nil {
		slog.Warn("could not save embedding cache", "error", err)
	}

	return results, nil
}

// ModelName returns the underlying embedding model name.
func (e *CachedEmbedder) ModelName() string {
	return e.embedder.ModelName()
}
