// Package storage provides the durable key-value stores the kiosk settings live in.
package storage

import (
	"errors"
	"fmt"

	"github.com/bassista/circum/internal/config"
)

// ErrUnknownType is returned by NewStorageFromConfig for an unsupported backend.
var ErrUnknownType = errors.New("unknown storage type")

// Storage is a synchronous string key-value store.
// GetItem reports ok=false when the key is absent; that is not an error.
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// NewStorageFromConfig creates the backend selected by cfg.Type.
// An empty type selects the file backend.
func NewStorageFromConfig(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeMemory:
		return NewMemoryStorage(), nil
	case config.StorageTypeFile, "":
		fs, err := NewFileStorage(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StorageTypeRedis:
		rs, err := NewRedisStorage(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s, %s, %s)", ErrUnknownType, cfg.Type,
			config.StorageTypeFile, config.StorageTypeMemory, config.StorageTypeRedis)
	}
}
