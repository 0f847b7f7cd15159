package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerStore wraps a Store with a circuit breaker. When the backend keeps
// failing (quota exceeded, connection down), the breaker opens and further
// writes fail fast with ErrUnavailable instead of hammering the backend.
// The containers already treat save failures as non-fatal, so an open
// breaker just means persistence is off until the backend recovers.
type BreakerStore struct {
	backend Store
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerStore(backend Store) *BreakerStore {
	settings := gobreaker.Settings{
		Name:    "snapshot-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerStore{
		backend: backend,
		cb:      gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (b *BreakerStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.cb.Execute(func() ([]byte, error) {
		data, err := b.backend.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			// An absent snapshot is a healthy answer, not a backend failure.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

func (b *BreakerStore) Save(ctx context.Context, key string, snapshot []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.backend.Save(ctx, key, snapshot)
	})
	return b.wrap(err)
}

func (b *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.backend.Delete(ctx, key)
	})
	return b.wrap(err)
}

func (b *BreakerStore) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
