package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedStore decorates a backing Store with an in-memory read cache.
// Loads go to the backend at most once per key while a result is cached;
// concurrent cache misses for the same key are collapsed with singleflight
// so a cold start doesn't stampede the backend. Saves write through and
// refresh the cache, deletes invalidate it.
type CachedStore struct {
	backend Store

	mu    sync.RWMutex
	cache map[string][]byte
	sfg   singleflight.Group
}

func NewCachedStore(backend Store) *CachedStore {
	return &CachedStore{
		backend: backend,
		cache:   make(map[string][]byte),
	}
}

func (c *CachedStore) Load(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		data, err := c.backend.Load(ctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = data
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

func (c *CachedStore) Save(ctx context.Context, key string, snapshot []byte) error {
	if err := c.backend.Save(ctx, key, snapshot); err != nil {
		// Backend refused the write; drop the cached copy so the next Load
		// reflects what is actually persisted.
		c.mu.Lock()
		delete(c.cache, key)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.cache[key] = snapshot
	c.mu.Unlock()
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.cache, key)
	c.mu.Unlock()

	return c.backend.Delete(ctx, key)
}
