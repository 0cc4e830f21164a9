// Package book reconstructs a Level-3 limit order book from a feed of
// typed exchange events (Add, Open, Match, Change, Done). It is a passive
// observer: it never decides a match, it only records one that already
// happened, so that per-order and per-price-level aggregates stay exact.
package book

import (
	"github.com/tidwall/btree"

	"ouroboros/internal/price"
)

// levels is the ordered map of OrderPrice -> *PriceLevel backing one side
// of the book, grounded on saiputravu-Exchange/internal/engine/orderbook.go's
// use of a generic BTree keyed by price, generalized here to the richer
// OrderPrice key (which also carries the Market sentinel).
type levels = btree.BTreeG[*PriceLevel]

// Book is the double-indexed Level-3 book: orders by id, and two
// price-ordered maps of PriceLevel (bid descending, ask ascending). Every
// order reachable from a PriceLevel is also present in orders, and its
// recorded (Side, Px) matches the map slot containing it.
type Book struct {
	bid *levels
	ask *levels

	orders map[string]*Order

	// OnLevelChange, if set, is invoked immediately after any
	// level-mutating transition with the level's size before and after.
	// Nil by default: Level-2 fan-out is optional and its absence does not
	// affect Book semantics.
	OnLevelChange func(side Side, px OrderPrice, oldSize, newSize price.Price)
}

// New returns an empty Book.
func New() *Book {
	bid := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		// Descending by price: the highest bid sorts first.
		return b.Px.Less(a.Px)
	})
	ask := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		// Ascending by price: the lowest ask sorts first.
		return a.Px.Less(b.Px)
	})
	return &Book{bid: bid, ask: ask, orders: make(map[string]*Order)}
}

func (b *Book) treeFor(side Side) *levels {
	if side == Bid {
		return b.bid
	}
	return b.ask
}

// levelFor returns the PriceLevel for (side, px), creating it if absent.
func (b *Book) levelFor(side Side, px OrderPrice) *PriceLevel {
	tree := b.treeFor(side)
	probe := &PriceLevel{Px: px}
	if existing, ok := tree.GetMut(probe); ok {
		return existing
	}
	level := newPriceLevel(px)
	tree.Set(level)
	return level
}

// findLevel looks up the PriceLevel for (side, px) without creating one.
func (b *Book) findLevel(side Side, px OrderPrice) (*PriceLevel, bool) {
	return b.treeFor(side).GetMut(&PriceLevel{Px: px})
}

func (b *Book) notifyLevelChange(side Side, px OrderPrice, oldSize, newSize price.Price) {
	if b.OnLevelChange != nil {
		b.OnLevelChange(side, px, oldSize, newSize)
	}
}

// PriceLevel is the read accessor for a limit price level. It never
// returns the market bucket, since it is keyed on a concrete price.Price.
func (b *Book) PriceLevel(side Side, px price.Price) (*PriceLevel, bool) {
	return b.findLevel(side, Limit(px))
}

// OnAdd creates the Order for a NewOrderEvent, indexes it by id, and
// appends it to its (side, px) PriceLevel. If px is Market, the order is
// still tracked and still receives a level (so its aggregates remain
// correct), but that level is not reachable via PriceLevel.
func (b *Book) OnAdd(ev NewOrderEvent) error {
	order := newOrder(ev.OrderID, ev.Side, ev.Px, ev.OrigSize, ev.OpenSize)
	b.orders[order.ID] = order

	level := b.levelFor(order.Side, order.Px)
	before := level.OpenSize
	level.onAdd(order)
	b.notifyLevelChange(order.Side, order.Px, before, level.OpenSize)
	return nil
}

// OnOpen sets the order's open size and books the same quantity at its
// level.
func (b *Book) OnOpen(ev OpenEvent) error {
	order, ok := b.orders[ev.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	level, ok := b.findLevel(order.Side, order.Px)
	if !ok {
		return ErrMissingLevel
	}

	before := level.OpenSize
	if err := level.onOpen(ev.RemainingSize); err != nil {
		return err
	}
	order.OpenSize = ev.RemainingSize
	b.notifyLevelChange(order.Side, order.Px, before, level.OpenSize)
	return nil
}

// OnMatch decrements the maker's order and level by the traded size. The
// taker requires no state change in this observer model (see DESIGN.md,
// "on_match_taker no-op").
func (b *Book) OnMatch(ev MatchEvent) error {
	maker, ok := b.orders[ev.MakerOrderID]
	if !ok {
		return ErrUnknownOrder
	}
	if maker.OpenSize.Less(ev.Size) {
		return ErrNegativeSize
	}
	level, ok := b.findLevel(maker.Side, maker.Px)
	if !ok {
		return ErrMissingLevel
	}

	before := level.OpenSize
	if err := level.onMatchMaker(ev.Size); err != nil {
		return err
	}
	maker.OpenSize = maker.OpenSize.Sub(ev.Size)
	b.notifyLevelChange(maker.Side, maker.Px, before, level.OpenSize)
	return nil
}

// OnChange applies a size reduction (new - old, which must be <= 0) to the
// order and, when the order rests at a Limit price, to its level. A
// funds-denominated Change on a market order still updates the order
// record; its market level is left unchanged.
func (b *Book) OnChange(ev ChangeEvent) error {
	order, ok := b.orders[ev.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	delta := ev.NewSize.Sub(ev.OldSize)
	if !delta.IsNegative() && !delta.IsZero() {
		return ErrPositiveChangeDelta
	}

	nextOpen := order.OpenSize.Add(delta)
	if nextOpen.IsNegative() {
		return ErrNegativeSize
	}
	order.OpenSize = nextOpen

	if _, limit := order.Px.Price(); !limit {
		return nil
	}
	level, ok := b.findLevel(order.Side, order.Px)
	if !ok {
		return ErrMissingLevel
	}
	before := level.OpenSize
	if err := level.onChange(delta); err != nil {
		return err
	}
	b.notifyLevelChange(order.Side, order.Px, before, level.OpenSize)
	return nil
}

// OnDone captures the order's residual open size (which must be zero when
// reason is Filled) and removes it from its level's open aggregate. The
// order record itself is retained in the id index; the observer model does
// not require removing it from its level's queue.
func (b *Book) OnDone(ev DoneEvent) error {
	order, ok := b.orders[ev.OrderID]
	if !ok {
		return ErrUnknownOrder
	}
	residual := order.OpenSize
	if ev.Reason == Filled && !residual.IsZero() {
		return ErrNonZeroResidualOnFill
	}
	level, ok := b.findLevel(order.Side, order.Px)
	if !ok {
		return ErrMissingLevel
	}

	before := level.OpenSize
	if err := level.onDone(residual); err != nil {
		return err
	}
	order.OpenSize = order.OpenSize.Sub(residual)
	b.notifyLevelChange(order.Side, order.Px, before, level.OpenSize)
	return nil
}

// Apply dispatches a typed feed event to the matching On* method. Per-event
// handlers remain individually callable — Apply is a convenience entry
// point, not the only contract.
func (b *Book) Apply(ev Event) error {
	switch e := ev.(type) {
	case NewOrderEvent:
		return b.OnAdd(e)
	case OpenEvent:
		return b.OnOpen(e)
	case MatchEvent:
		return b.OnMatch(e)
	case ChangeEvent:
		return b.OnChange(e)
	case DoneEvent:
		return b.OnDone(e)
	default:
		return ErrUnsupportedEvent
	}
}

// Order looks up an order by id, for callers (tests, snapshot comparisons)
// that need direct access beyond the level aggregates.
func (b *Book) Order(id string) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}
