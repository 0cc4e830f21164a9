package book

import "errors"

// Semantic violations. Per the propagation policy, the Book does not try to
// recover from any of these: callers (see cmd/replay) treat them as fatal
// and abort after logging, since downstream aggregates would otherwise be
// silently wrong.
var (
	ErrUnknownOrder          = errors.New("book: unknown order id")
	ErrMissingLevel          = errors.New("book: order has no reachable price level")
	ErrNegativeSize          = errors.New("book: size went negative")
	ErrNonZeroResidualOnFill = errors.New("book: filled order has non-zero residual open size")
	ErrPositiveChangeDelta   = errors.New("book: change only reduces size")
	ErrUnsupportedEvent      = errors.New("book: unsupported event type")
)
