package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"keyword-report/pkg/logger"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestFileStorage(t *testing.T, cacheSize int) (*FileStorage, string) {
	t.Helper()

	dir := t.TempDir()
	fs, err := NewFileStorage(StorageConfig{DataDir: dir, CacheSize: cacheSize}, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return fs, dir
}

func TestFileStorage_SaveLoad(t *testing.T) {
	for _, cacheSize := range []int{0, 4} {
		fs, dir := newTestFileStorage(t, cacheSize)
		ctx := context.Background()

		if err := fs.Save(ctx, "reports/abc", sample{Name: "x", Count: 3}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "reports", "abc.json")); err != nil {
			t.Errorf("Expected file on disk: %v", err)
		}

		var loaded sample
		if err := fs.Load(ctx, "reports/abc", &loaded); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Name != "x" || loaded.Count != 3 {
			t.Errorf("Unexpected data: %+v", loaded)
		}

		exists, err := fs.Exists(ctx, "reports/abc")
		if err != nil || !exists {
			t.Errorf("Expected key to exist, got %t (%v)", exists, err)
		}
	}
}

func TestFileStorage_LoadMissing(t *testing.T) {
	fs, _ := newTestFileStorage(t, 2)

	var loaded sample
	err := fs.Load(context.Background(), "missing", &loaded)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFileStorage_Delete(t *testing.T) {
	fs, _ := newTestFileStorage(t, 2)
	ctx := context.Background()

	fs.Save(ctx, "k", sample{Name: "gone"})
	if err := fs.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var loaded sample
	if err := fs.Load(ctx, "k", &loaded); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete (cache must be cleared), got %v", err)
	}

	if err := fs.Delete(ctx, "k"); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestFileStorage_RejectsTraversal(t *testing.T) {
	fs, _ := newTestFileStorage(t, 0)

	for _, key := range []string{"", "../escape", "a/../../b", `a\b`, "/"} {
		if err := fs.Save(context.Background(), key, sample{}); err == nil {
			t.Errorf("Expected key %q to be rejected", key)
		}
	}
}

func TestNewFileStorage_RequiresDataDir(t *testing.T) {
	if _, err := NewFileStorage(StorageConfig{}, logger.Nop()); err == nil {
		t.Error("Expected error for empty data dir")
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewMemoryCache(2)

	cache.Set("a", []byte("1"))
	cache.Set("b", []byte("2"))
	cache.Get("a")
	cache.Set("c", []byte("3"))

	if _, ok := cache.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if v, ok := cache.Get("a"); !ok || string(v) != "1" {
		t.Error("Expected a to survive as recently used")
	}
	if cache.Size() != 2 {
		t.Errorf("Expected size 2, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Expected empty cache after clear, got %d", cache.Size())
	}
}
