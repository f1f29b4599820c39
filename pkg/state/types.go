package state

import (
	"context"
	"errors"
)

var (
	// ErrStoreRequired is returned when a nil Store is supplied.
	ErrStoreRequired = errors.New("state: store is required")
	// ErrKeyRequired rejects empty keys.
	ErrKeyRequired = errors.New("state: key is required")
)

// Store persists raw string values. Missing keys report ok=false.
type Store interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
	Keys(ctx context.Context) ([]string, error)
}

// Entry is one key/value pair of a batch save.
type Entry struct {
	Key   string
	Value string
}

// BatchStore is implemented by stores that persist several entries in one
// write.
type BatchStore interface {
	SaveAll(ctx context.Context, entries ...Entry) error
}
