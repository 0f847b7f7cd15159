package store

import (
	"context"
	"errors"
)

// Common errors returned by snapshot stores
var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrUnavailable = errors.New("store unavailable")
)

// Store is the persistence contract the state containers write through.
// It is a plain key-value surface: one key per container (cart snapshot,
// favorites snapshot), values are the serialized snapshots. Implementations
// must treat Delete of an absent key as a no-op.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, snapshot []byte) error
	Delete(ctx context.Context, key string) error
}

// Default keys used by the storefront session. Callers may use their own.
const (
	CartKey      = "storefront:cart"
	FavoritesKey = "storefront:favorites"
)
