// Package session wires the storefront state together: one cart and one
// favorites set over a shared snapshot store, with the notification
// presenter driving the added-item toast.
package session

import (
	"context"

	"github.com/laobservation/veggie-fruit-express-sub001/cart"
	"github.com/laobservation/veggie-fruit-express-sub001/favorites"
	"github.com/laobservation/veggie-fruit-express-sub001/notify"
	"github.com/laobservation/veggie-fruit-express-sub001/store"
)

// Session is the per-tab state root. All components share the store and
// live for the lifetime of the session.
type Session struct {
	cart      *cart.Cart
	favorites *favorites.Favorites
	presenter *notify.Presenter
}

// Open builds the containers over st and rehydrates both. The returned
// session is always usable; a non-nil error means a backend failed to load
// and the session started from empty state. Callers should surface that as
// a warning, not a failure.
func Open(ctx context.Context, st store.Store) (*Session, error) {
	c := cart.New(st, store.CartKey)
	f := favorites.New(st, store.FavoritesKey)

	p := notify.NewPresenter(c)
	c.SetOnItemAdded(p.Show)

	s := &Session{cart: c, favorites: f, presenter: p}

	cartErr := c.Load(ctx)
	favErr := f.Load(ctx)
	if cartErr != nil {
		return s, cartErr
	}
	return s, favErr
}

// Cart returns the cart state container.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// Favorites returns the favorites state container.
func (s *Session) Favorites() *favorites.Favorites {
	return s.favorites
}

// Presenter returns the notification presenter.
func (s *Session) Presenter() *notify.Presenter {
	return s.presenter
}

// Close tears the session down, cancelling any pending notification
// timers. State already persisted stays in the store.
func (s *Session) Close() {
	s.presenter.Shutdown()
}
