// Package cart holds the storefront's cart state: the ordered list of line
// items plus the transient UI flags (added-item notification, checkout
// reminder, panel open/closed). All mutation goes through the methods here;
// readers may query from any goroutine.
package cart

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

// Cart is the cart state container. Create one per session with New;
// the zero value is not usable.
type Cart struct {
	mu           sync.RWMutex
	lines        []domain.CartLine
	notification domain.Notification
	reminder     bool
	open         bool

	st  store.Store
	key string

	onItemAdded func(domain.Product, int)
}

// New creates an empty cart persisted under key in st. A nil store gives a
// purely in-memory cart.
func New(st store.Store, key string) *Cart {
	return &Cart{st: st, key: key}
}

// SetOnItemAdded registers the hook invoked after every successful AddItem,
// with the product and the line's resulting quantity. Used by the
// notification presenter; must be set before the cart is shared.
func (c *Cart) SetOnItemAdded(fn func(domain.Product, int)) {
	c.onItemAdded = fn
}

// Load rehydrates the cart from the persistent store. An absent or
// undecodable snapshot yields an empty cart; only a failing backend is
// reported to the caller.
func (c *Cart) Load(ctx context.Context) error {
	if c.st == nil {
		return nil
	}

	data, err := c.st.Load(ctx, c.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("cart snapshot decode failed, starting empty: %v", err)
		return nil
	}

	c.mu.Lock()
	c.lines = snap.Lines
	c.mu.Unlock()
	return nil
}

// AddItem puts quantity units of product in the cart. If a line for the
// product already exists its quantity is incremented and its selected
// services are left untouched (matching storefront behavior even when new
// services are passed); otherwise a new line is appended. The added-item
// notification is raised and any pending checkout reminder is cleared.
// Quantities below 1 are treated as 1.
func (c *Cart) AddItem(product domain.Product, quantity int, services ...domain.ServiceOption) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	lineQty := quantity
	found := false
	for i := range c.lines {
		if c.lines[i].Product.ID == product.ID {
			c.lines[i].Quantity += quantity
			lineQty = c.lines[i].Quantity
			found = true
			break
		}
	}
	if !found {
		c.lines = append(c.lines, domain.CartLine{
			Product:  product,
			Quantity: quantity,
			Services: services,
		})
	}

	c.notification = domain.Notification{
		Visible:  true,
		Product:  product,
		Quantity: lineQty,
	}
	c.reminder = false
	c.mu.Unlock()

	c.persist()

	if c.onItemAdded != nil {
		c.onItemAdded(product, lineQty)
	}
}

// RemoveItem deletes the line for productID. Removing an absent product is
// a no-op.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.persist()
}

// UpdateQuantity sets the line's quantity to an absolute value. A quantity
// of zero or less removes the line. Updating an absent product is a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = quantity
			break
		}
	}
	c.mu.Unlock()

	c.persist()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()

	c.persist()
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems is the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity across all lines. Service
// surcharges are excluded; they are added with shipping at order time, see
// domain.OrderTotal.
func (c *Cart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Notification returns the current added-item notification state.
func (c *Cart) Notification() domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notification
}

// HideNotification dismisses the added-item notification and raises the
// checkout reminder.
func (c *Cart) HideNotification() {
	c.mu.Lock()
	c.notification = domain.Notification{}
	c.reminder = true
	c.mu.Unlock()
}

// Open marks the cart panel open. Opening the panel clears both the
// notification and the reminder without raising anything: the user is
// already looking at the cart.
func (c *Cart) Open() {
	c.mu.Lock()
	c.open = true
	c.notification = domain.Notification{}
	c.reminder = false
	c.mu.Unlock()
}

// Close marks the cart panel closed.
func (c *Cart) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

// IsOpen reports whether the cart panel is open.
func (c *Cart) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// ToggleReminder sets the checkout reminder explicitly, e.g. to suppress it
// on navigation to the order confirmation page.
func (c *Cart) ToggleReminder(show bool) {
	c.mu.Lock()
	c.reminder = show
	c.mu.Unlock()
}

// ReminderShown reports whether the checkout reminder is raised.
func (c *Cart) ReminderShown() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reminder
}

// persist writes the full snapshot to the store. A failing store is logged
// and otherwise ignored: in-memory state stays authoritative for the
// session and persistence degrades until the backend recovers.
func (c *Cart) persist() {
	if c.st == nil {
		return
	}

	c.mu.RLock()
	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	c.mu.RUnlock()

	snap := domain.CartSnapshot{
		Version: domain.SnapshotVersion,
		Lines:   lines,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("cart snapshot marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.st.Save(ctx, c.key, data); err != nil {
		log.Printf("cart snapshot save failed: %v", err)
	}
}
