package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"keyword-report/pkg/logger"
)

// FileStorage stores JSON documents under a data directory, one file per key
type FileStorage struct {
	dataDir string
	cache   Cache
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewFileStorage creates the data directory if needed
func NewFileStorage(config StorageConfig, log *logger.Logger) (*FileStorage, error) {
	if config.DataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if log == nil {
		log = logger.GetLogger()
	}

	var cache Cache
	if config.CacheSize > 0 {
		cache = NewMemoryCache(config.CacheSize)
	}

	storage := &FileStorage{
		dataDir: config.DataDir,
		cache:   cache,
		log:     log.Component("file_storage"),
	}

	storage.log.WithFields(map[string]interface{}{
		"data_dir":   config.DataDir,
		"cache_size": config.CacheSize,
	}).Debug("File storage initialized")

	return storage, nil
}

// Save writes data as JSON, replacing any previous value atomically
func (fs *FileStorage) Save(ctx context.Context, key string, data interface{}) error {
	filePath, err := fs.getFilePath(key)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0644); err != nil {
		fs.log.WithError(err).WithField("key", key).Error("Failed to write file")
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}

	if fs.cache != nil {
		fs.cache.Set(key, jsonData)
	}

	fs.log.WithFields(map[string]interface{}{
		"key":  key,
		"size": len(jsonData),
	}).Debug("Data saved successfully")

	return nil
}

// Load reads the JSON document for key into dest
func (fs *FileStorage) Load(ctx context.Context, key string, dest interface{}) error {
	filePath, err := fs.getFilePath(key)
	if err != nil {
		return err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.cache != nil {
		if cached, found := fs.cache.Get(key); found {
			if err := json.Unmarshal(cached, dest); err == nil {
				return nil
			}
		}
	}

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(jsonData, dest); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	if fs.cache != nil {
		fs.cache.Set(key, jsonData)
	}
	return nil
}

// Delete removes data and clears cache
func (fs *FileStorage) Delete(ctx context.Context, key string) error {
	filePath, err := fs.getFilePath(key)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if fs.cache != nil {
		fs.cache.Delete(key)
	}
	return nil
}

// Exists checks if a key exists
func (fs *FileStorage) Exists(ctx context.Context, key string) (bool, error) {
	filePath, err := fs.getFilePath(key)
	if err != nil {
		return false, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// getFilePath maps a slash-separated key to a file inside the data directory
func (fs *FileStorage) getFilePath(key string) (string, error) {
	cleaned, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(fs.dataDir, filepath.FromSlash(cleaned)+".json"), nil
}

// normalizeKey turns a slash separated key into a relative clean path
func normalizeKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if key == "" || cleaned == "/" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
