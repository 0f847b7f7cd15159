package domain

// SnapshotVersion is written into every persisted snapshot. Schema changes
// must stay additive; readers ignore fields they don't know.
const SnapshotVersion = 1

// CartLine is one distinct product's entry in the cart. Quantity is always
// >= 1; a line whose quantity reaches zero is removed, never kept at zero.
type CartLine struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Services []ServiceOption `json:"selected_services,omitempty"`
}

// Subtotal is the line's contribution to the cart aggregate: unit price
// times quantity. Service surcharges are intentionally excluded here, they
// join at order-total time.
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// ServicesSurcharge is the flat sum of the line's selected add-on services.
// Surcharges are per line, not per unit.
func (l CartLine) ServicesSurcharge() float64 {
	var total float64
	for _, s := range l.Services {
		total += s.Price
	}
	return total
}

// CartSnapshot is the persisted form of the cart. Line order is insertion
// order and is significant for display.
type CartSnapshot struct {
	Version int        `json:"version"`
	Lines   []CartLine `json:"lines"`
}

// FavoritesSnapshot is the persisted form of the favorites set. Order is
// the order products were liked in.
type FavoritesSnapshot struct {
	Version  int       `json:"version"`
	Products []Product `json:"products"`
}

// Notification is the transient "item added" acknowledgment state. It is
// never persisted.
type Notification struct {
	Visible  bool
	Product  Product
	Quantity int
}
