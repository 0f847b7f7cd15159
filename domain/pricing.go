package domain

// OrderTotal is the checkout-time aggregate: line subtotals plus per-line
// service surcharges plus shipping. This is deliberately separate from the
// cart container's TotalPrice, which covers line subtotals only.
func OrderTotal(lines []CartLine, shipping float64) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal() + l.ServicesSurcharge()
	}
	return total + shipping
}
