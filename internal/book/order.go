package book

import "ouroboros/internal/price"

// Order is the per-order state tracked by the Book. It is reachable both
// through Book.orders (by id) and through its PriceLevel's queue; both
// paths hold the same *Order, so a mutation through one is visible through
// the other. Events for a given book are applied serially, so this shared
// pointer never needs its own lock.
type Order struct {
	ID       string
	Side     Side
	Px       OrderPrice
	OrigSize price.Price
	OpenSize price.Price
}

// newOrder builds the Order created by an Add event. OpenSize may be zero
// if the order has not yet been booked (it becomes nonzero on Open).
func newOrder(id string, side Side, px OrderPrice, origSize, openSize price.Price) *Order {
	return &Order{ID: id, Side: side, Px: px, OrigSize: origSize, OpenSize: openSize}
}
