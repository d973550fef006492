package storage

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("storage closed")
)

// Storage is a device-local key/value store. Values are opaque strings and every
// SetItem replaces the whole value for the key.
type Storage interface {
	// GetItem returns ErrKeyNotFound when nothing is stored under key.
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem does not fail for a missing key.
	RemoveItem(ctx context.Context, key string) error
	Close() error
}
