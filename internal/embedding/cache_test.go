package embedding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeEmbedder counts calls and serves a fixed vector, or fails.
type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake" }

func TestCacheKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello world"},
		{"  padded  ", "padded"},
		{"UPPER", "upper"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CacheKey(tt.input); got != tt.want {
			t.Errorf("CacheKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEmbedBlankText(t *testing.T) {
	e := NewCachedEmbedder(&fakeEmbedder{vector: []float32{1}}, LoadCache(filepath.Join(t.TempDir(), "cache.json")))

	if _, err := e.Embed(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Embed(blank) error = %v, want ErrEmptyText", err)
	}
}

func TestEmbedCachesResult(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	e := NewCachedEmbedder(fake, LoadCache(filepath.Join(t.TempDir(), "cache.json")))
	ctx := context.Background()

	if _, err := e.Embed(ctx, "Bulls Game"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	// Key normalization means a differently-cased repeat is a hit.
	if _, err := e.Embed(ctx, "bulls game"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if fake.calls != 1 {
		t.Errorf("service calls = %d, want 1", fake.calls)
	}
}

func TestEmbedPersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	fake := &fakeEmbedder{vector: []float32{0.5}}

	e := NewCachedEmbedder(fake, LoadCache(path))
	if _, err := e.Embed(context.Background(), "bulls"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	// A fresh cache over the same file must serve the entry without the
	// service.
	failing := &fakeEmbedder{err: errors.New("offline")}
	reloaded := NewCachedEmbedder(failing, LoadCache(path))
	vec, err := reloaded.Embed(context.Background(), "bulls")
	if err != nil {
		t.Fatalf("Embed() after reload error = %v", err)
	}
	if len(vec) != 1 || vec[0] != 0.5 {
		t.Errorf("Embed() after reload = %v, want [0.5]", vec)
	}
	if failing.calls != 0 {
		t.Errorf("service calls after reload = %d, want 0", failing.calls)
	}
}

func TestEmbedServiceFailureLeavesCacheUnchanged(t *testing.T) {
	cache := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
	e := NewCachedEmbedder(&fakeEmbedder{err: errors.New("offline")}, cache)

	if _, err := e.Embed(context.Background(), "bulls"); err == nil {
		t.Fatal("Embed() error = nil, want error")
	}
	if cache.Len() != 0 {
		t.Errorf("cache length = %d, want 0", cache.Len())
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	c := LoadCache(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestLoadCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := LoadCache(path)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for corrupt file", c.Len())
	}

	// The rebuilt cache must still be writable.
	c.Put("key", []float32{1})
	if err := c.Flush(); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
}

func TestFlushCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	c := LoadCache(path)
	c.Put("key", []float32{1, 2})

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
}

func TestEmbedBatchFillsOnlyMisses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := LoadCache(path)
	cache.Put("cached", []float32{9})

	fake := &fakeEmbedder{vector: []float32{1}}
	e := NewCachedEmbedder(fake, cache)

	vecs, err := e.EmbedBatch(context.Background(), []string{"cached", "", "fresh"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if vecs[0] == nil || vecs[0][0] != 9 {
		t.Errorf("cached entry = %v, want [9]", vecs[0])
	}
	if vecs[1] != nil {
		t.Errorf("blank entry = %v, want nil", vecs[1])
	}
	if vecs[2] == nil || vecs[2][0] != 1 {
		t.Errorf("fresh entry = %v, want [1]", vecs[2])
	}
	if fake.calls != 1 {
		t.Errorf("service calls = %d, want 1", fake.calls)
	}
}
