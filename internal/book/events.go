package book

import (
	"encoding/json"
	"fmt"

	"ouroboros/internal/price"
)

// Event is the common shape of all five feed message variants: every
// message carries a sequence number and a timestamp. Book.Apply dispatches
// on the concrete type.
type Event interface {
	Sequence() uint64
	Time() uint64
}

// NewOrderEvent announces a new order. OpenSize may be zero if the order
// has not yet been booked by the exchange (it becomes nonzero on Open).
type NewOrderEvent struct {
	Seq      uint64
	Ts       uint64
	OrderID  string
	Side     Side
	Px       OrderPrice
	OrigSize price.Price
	OpenSize price.Price
}

func (e NewOrderEvent) Sequence() uint64 { return e.Seq }
func (e NewOrderEvent) Time() uint64     { return e.Ts }

// OpenEvent transitions an order onto the book with RemainingSize visible
// and matchable.
type OpenEvent struct {
	Seq           uint64
	Ts            uint64
	OrderID       string
	RemainingSize price.Price
}

func (e OpenEvent) Sequence() uint64 { return e.Seq }
func (e OpenEvent) Time() uint64     { return e.Ts }

// MatchEvent records a trade. Side is the resting (maker) side.
type MatchEvent struct {
	Seq          uint64
	Ts           uint64
	MakerOrderID string
	TakerOrderID string
	Side         Side
	Price        price.Price
	Size         price.Price
}

func (e MatchEvent) Sequence() uint64 { return e.Seq }
func (e MatchEvent) Time() uint64     { return e.Ts }

// ChangeEvent reduces an order's resting size (or, for a market order,
// its remaining funds). OldSize/NewSize's difference must be <= 0.
type ChangeEvent struct {
	Seq     uint64
	Ts      uint64
	OrderID string
	Price   OrderPrice
	OldSize price.Price
	NewSize price.Price
}

func (e ChangeEvent) Sequence() uint64 { return e.Seq }
func (e ChangeEvent) Time() uint64     { return e.Ts }

// DoneEvent is an order's terminal transition.
type DoneEvent struct {
	Seq     uint64
	Ts      uint64
	OrderID string
	Reason  DoneReason
}

func (e DoneEvent) Sequence() uint64 { return e.Seq }
func (e DoneEvent) Time() uint64     { return e.Ts }

// wireMessage is the on-disk JSON shape of one line of a websocket chunk
// file, modeled on a real exchange's full L3 channel: message "type"
// discriminates received/open/match/change/done, and every size/price
// field is a decimal string (parsed through internal/price.Parse, never
// a binary float) to avoid reintroducing the drift Price exists to avoid.
type wireMessage struct {
	Type          string `json:"type"`
	Sequence      uint64 `json:"sequence"`
	Time          uint64 `json:"time"`
	OrderID       string `json:"order_id"`
	MakerOrderID  string `json:"maker_order_id"`
	TakerOrderID  string `json:"taker_order_id"`
	Side          string `json:"side"`
	OrderType     string `json:"order_type"`
	Price         string `json:"price"`
	Size          string `json:"size"`
	Funds         string `json:"funds"`
	RemainingSize string `json:"remaining_size"`
	OldSize       string `json:"old_size"`
	NewSize       string `json:"new_size"`
	OldFunds      string `json:"old_funds"`
	NewFunds      string `json:"new_funds"`
	Reason        string `json:"reason"`
}

// UnmarshalFeedMessage decodes one newline-delimited JSON feed message into
// its typed Event. This is the one stdlib encoding/json boundary the Book
// needs to replay an archived chunk end to end; everything upstream of it
// (gzip decompression, line splitting) is handled by internal/historical.
func UnmarshalFeedMessage(line []byte) (Event, error) {
	var raw wireMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("book: decode feed message: %w", err)
	}

	switch raw.Type {
	case "received":
		return newOrderEventFromWire(raw)
	case "open":
		remaining, err := price.Parse(raw.RemainingSize)
		if err != nil {
			return nil, fmt.Errorf("book: decode open event: %w", err)
		}
		return OpenEvent{Seq: raw.Sequence, Ts: raw.Time, OrderID: raw.OrderID, RemainingSize: remaining}, nil
	case "match":
		return matchEventFromWire(raw)
	case "change":
		return changeEventFromWire(raw)
	case "done":
		reason, err := parseDoneReason(raw.Reason)
		if err != nil {
			return nil, err
		}
		return DoneEvent{Seq: raw.Sequence, Ts: raw.Time, OrderID: raw.OrderID, Reason: reason}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, raw.Type)
	}
}

func newOrderEventFromWire(raw wireMessage) (Event, error) {
	side, err := parseSide(raw.Side)
	if err != nil {
		return nil, err
	}
	px, err := parseOrderPrice(raw.OrderType, raw.Price)
	if err != nil {
		return nil, err
	}
	orig, err := parseSizeOrFunds(raw.Size, raw.Funds)
	if err != nil {
		return nil, err
	}
	return NewOrderEvent{
		Seq: raw.Sequence, Ts: raw.Time,
		OrderID: raw.OrderID, Side: side, Px: px,
		OrigSize: orig, OpenSize: price.Zero(),
	}, nil
}

func matchEventFromWire(raw wireMessage) (Event, error) {
	side, err := parseSide(raw.Side)
	if err != nil {
		return nil, err
	}
	px, err := price.Parse(raw.Price)
	if err != nil {
		return nil, fmt.Errorf("book: decode match event: %w", err)
	}
	size, err := price.Parse(raw.Size)
	if err != nil {
		return nil, fmt.Errorf("book: decode match event: %w", err)
	}
	return MatchEvent{
		Seq: raw.Sequence, Ts: raw.Time,
		MakerOrderID: raw.MakerOrderID, TakerOrderID: raw.TakerOrderID,
		Side: side, Price: px, Size: size,
	}, nil
}

func changeEventFromWire(raw wireMessage) (Event, error) {
	px, err := parseOrderPrice(raw.OrderType, raw.Price)
	if err != nil {
		return nil, err
	}
	oldVal, newVal := raw.OldSize, raw.NewSize
	if oldVal == "" && newVal == "" {
		oldVal, newVal = raw.OldFunds, raw.NewFunds
	}
	oldSize, err := price.Parse(oldVal)
	if err != nil {
		return nil, fmt.Errorf("book: decode change event: %w", err)
	}
	newSize, err := price.Parse(newVal)
	if err != nil {
		return nil, fmt.Errorf("book: decode change event: %w", err)
	}
	return ChangeEvent{
		Seq: raw.Sequence, Ts: raw.Time,
		OrderID: raw.OrderID, Price: px,
		OldSize: oldSize, NewSize: newSize,
	}, nil
}

func parseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return Bid, nil
	case "sell":
		return Ask, nil
	default:
		return 0, fmt.Errorf("book: invalid side %q", s)
	}
}

func parseOrderPrice(orderType, px string) (OrderPrice, error) {
	if orderType == "market" || px == "" {
		return Market(), nil
	}
	p, err := price.Parse(px)
	if err != nil {
		return OrderPrice{}, fmt.Errorf("book: decode order price: %w", err)
	}
	return Limit(p), nil
}

func parseSizeOrFunds(size, funds string) (price.Price, error) {
	if size != "" {
		return price.Parse(size)
	}
	return price.Parse(funds)
}

func parseDoneReason(s string) (DoneReason, error) {
	switch s {
	case "filled":
		return Filled, nil
	case "canceled", "cancelled":
		return Canceled, nil
	default:
		return 0, fmt.Errorf("book: invalid done reason %q", s)
	}
}
