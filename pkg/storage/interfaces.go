package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("key not found")

type StorageConfig struct {
	DataDir    string `json:"data_dir"`
	CacheSize  int    `json:"cache_size"`
	MaxReports int    `json:"max_reports"`
}

type Storage interface {
	Save(ctx context.Context, key string, data interface{}) error
	Load(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Cache interface {
	Set(key string, value []byte)
	Get(key string) ([]byte, bool)
	Delete(key string)
	Clear()
}
