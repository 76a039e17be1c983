package storage

import (
	"container/list"
	"sync"
)

type cacheItem struct {
	key   string
	value []byte
}

// MemoryCache is a fixed-size LRU cache of encoded values
type MemoryCache struct {
	maxSize int
	items   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
}

// NewMemoryCache creates a new in-memory cache with specified size
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &MemoryCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lruList: list.New(),
	}
}

// Set adds or updates an item and evicts the least recently used one when full
func (mc *MemoryCache) Set(key string, value []byte) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.items[key]; exists {
		element.Value.(*cacheItem).value = value
		mc.lruList.MoveToFront(element)
		return
	}

	mc.items[key] = mc.lruList.PushFront(&cacheItem{key: key, value: value})

	if mc.lruList.Len() > mc.maxSize {
		oldest := mc.lruList.Back()
		mc.lruList.Remove(oldest)
		delete(mc.items, oldest.Value.(*cacheItem).key)
	}
}

// Get retrieves an item and marks it recently used
func (mc *MemoryCache) Get(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.items[key]
	if !exists {
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	return element.Value.(*cacheItem).value, true
}

// Delete removes an item from the cache
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.items[key]; exists {
		mc.lruList.Remove(element)
		delete(mc.items, key)
	}
}

// Clear removes all items from the cache
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.items = make(map[string]*list.Element)
	mc.lruList.Init()
}

// Size returns the current number of items in the cache
func (mc *MemoryCache) Size() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lruList.Len()
}
