package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStorage keeps JSON documents for the lifetime of the process.
// Keys follow the same rules as FileStorage so a ReportStore behaves the
// same on either backend.
type MemoryStorage struct {
	docs map[string]json.RawMessage
	mu   sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{docs: make(map[string]json.RawMessage)}
}

func (ms *MemoryStorage) Save(ctx context.Context, key string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	ms.mu.Lock()
	ms.docs[normalized] = doc
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStorage) Load(ctx context.Context, key string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}

	ms.mu.RLock()
	doc, ok := ms.docs[normalized]
	ms.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if err := json.Unmarshal(doc, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Delete is a no-op for unknown keys
func (ms *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	delete(ms.docs, normalized)
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return false, err
	}

	ms.mu.RLock()
	_, ok := ms.docs[normalized]
	ms.mu.RUnlock()
	return ok, nil
}

// Len reports how many documents are held
func (ms *MemoryStorage) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.docs)
}
