// Package favorites holds the set of products the user has liked. The set
// is keyed by product ID and remembers the order products were liked in,
// which is the order the storefront renders them.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/laobservation/veggie-fruit-express-sub001/domain"
	"github.com/laobservation/veggie-fruit-express-sub001/store"
)

const persistTimeout = time.Second

// Favorites is the favorites state container. Create one per session with
// New; the zero value is not usable.
type Favorites struct {
	mu       sync.RWMutex
	products []domain.Product

	st  store.Store
	key string
}

// New creates an empty favorites set persisted under key in st. A nil
// store gives a purely in-memory set.
func New(st store.Store, key string) *Favorites {
	return &Favorites{st: st, key: key}
}

// Load rehydrates the set from the persistent store. Absent or undecodable
// snapshots yield an empty set.
func (f *Favorites) Load(ctx context.Context) error {
	if f.st == nil {
		return nil
	}

	data, err := f.st.Load(ctx, f.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap domain.FavoritesSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("favorites snapshot decode failed, starting empty: %v", err)
		return nil
	}

	f.mu.Lock()
	f.products = snap.Products
	f.mu.Unlock()
	return nil
}

// IsFavorite reports whether productID is in the set.
func (f *Favorites) IsFavorite(productID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(productID) >= 0
}

// Toggle removes the product if present, adds it otherwise.
func (f *Favorites) Toggle(product domain.Product) {
	f.mu.Lock()
	if i := f.indexOf(product.ID); i >= 0 {
		f.products = append(f.products[:i], f.products[i+1:]...)
	} else {
		f.products = append(f.products, product)
	}
	f.mu.Unlock()

	f.persist()
}

// Add puts the product in the set. Adding an already liked product is a
// no-op, never a duplicate.
func (f *Favorites) Add(product domain.Product) {
	f.mu.Lock()
	if f.indexOf(product.ID) >= 0 {
		f.mu.Unlock()
		return
	}
	f.products = append(f.products, product)
	f.mu.Unlock()

	f.persist()
}

// Remove deletes the product from the set, if present.
func (f *Favorites) Remove(productID string) {
	f.mu.Lock()
	if i := f.indexOf(productID); i >= 0 {
		f.products = append(f.products[:i], f.products[i+1:]...)
	}
	f.mu.Unlock()

	f.persist()
}

// Clear empties the set.
func (f *Favorites) Clear() {
	f.mu.Lock()
	f.products = nil
	f.mu.Unlock()

	f.persist()
}

// Products returns a copy of the liked products in like order.
func (f *Favorites) Products() []domain.Product {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.Product, len(f.products))
	copy(out, f.products)
	return out
}

// Count returns the number of liked products.
func (f *Favorites) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.products)
}

// indexOf must be called with the lock held.
func (f *Favorites) indexOf(productID string) int {
	for i := range f.products {
		if f.products[i].ID == productID {
			return i
		}
	}
	return -1
}

func (f *Favorites) persist() {
	if f.st == nil {
		return
	}

	f.mu.RLock()
	products := make([]domain.Product, len(f.products))
	copy(products, f.products)
	f.mu.RUnlock()

	snap := domain.FavoritesSnapshot{
		Version:  domain.SnapshotVersion,
		Products: products,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("favorites snapshot marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := f.st.Save(ctx, f.key, data); err != nil {
		log.Printf("favorites snapshot save failed: %v", err)
	}
}
