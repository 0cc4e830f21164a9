package book

import "ouroboros/internal/price"

// PriceLevel is the FIFO queue of orders resting at a given (Side,
// OrderPrice), plus the aggregates a Level-2 consumer would want. Orders
// are appended in arrival order and never removed from the queue — the
// Book is an observer of an exchange's own matching decisions, not a
// matcher itself, so no per-queue removal is required to keep the
// aggregates correct (spec: "no per-queue removal is required by the
// observer model").
type PriceLevel struct {
	Px        OrderPrice
	Orders    []*Order
	TotalSize price.Price
	OpenSize  price.Price
}

func newPriceLevel(px OrderPrice) *PriceLevel {
	return &PriceLevel{Px: px}
}

// onAdd records a freshly created order: TotalSize grows by the order's
// original size and the order joins the back of the queue. TotalSize is
// monotonically non-decreasing over the level's lifetime by construction.
func (l *PriceLevel) onAdd(order *Order) {
	l.TotalSize = l.TotalSize.Add(order.OrigSize)
	l.Orders = append(l.Orders, order)
}

// onOpen books size additional open quantity at this level.
func (l *PriceLevel) onOpen(size price.Price) error {
	if size.IsNegative() {
		return ErrNegativeSize
	}
	l.OpenSize = l.OpenSize.Add(size)
	return nil
}

// onMatchMaker removes size of resting quantity consumed by a trade where
// an order at this level was the maker.
func (l *PriceLevel) onMatchMaker(size price.Price) error {
	if l.OpenSize.Less(size) {
		return ErrNegativeSize
	}
	l.OpenSize = l.OpenSize.Sub(size)
	return nil
}

// onChange applies a non-positive size delta from a Change event.
func (l *PriceLevel) onChange(delta price.Price) error {
	if !delta.IsNegative() && !delta.IsZero() {
		return ErrPositiveChangeDelta
	}
	next := l.OpenSize.Add(delta)
	if next.IsNegative() {
		return ErrNegativeSize
	}
	l.OpenSize = next
	return nil
}

// onDone removes an order's residual open size once it leaves the book.
func (l *PriceLevel) onDone(residual price.Price) error {
	if residual.IsNegative() {
		return ErrNegativeSize
	}
	if l.OpenSize.Less(residual) {
		return ErrNegativeSize
	}
	l.OpenSize = l.OpenSize.Sub(residual)
	return nil
}
