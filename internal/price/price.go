// Package price implements the fixed-point scalar used for every price and
// size in the replay engine. A Price is an exact integer tick count at scale
// 10^8; it never drifts the way a binary float accumulator would, and it is
// a plain comparable struct so it can be used directly as a map key.
package price

import (
	"errors"
	"strconv"
)

// whole is the number of internal ticks in one real unit (10^8).
const whole = 100_000_000

// cent is the number of ticks always shown when formatting (10^8 / 100).
const cent = whole / 100

// fractionalDigits is how many digits beyond the mandatory two are shown,
// trailing zeros trimmed.
const fractionalDigits = 6

// ErrParse is returned by Parse when the input is not a valid real number.
var ErrParse = errors.New("price: not a valid decimal number")

// Price is an exact fixed-point scalar at scale 10^8. The zero value is
// Zero().
type Price struct {
	v int64
}

// Zero returns the additive identity.
func Zero() Price { return Price{} }

// FromReal converts a real number to a Price by multiplying by 10^8 and
// truncating toward zero.
func FromReal(x float64) Price {
	return Price{v: int64(x * whole)}
}

// ToReal converts a Price back to its real-number interpretation.
func (p Price) ToReal() float64 {
	return float64(p.v) / whole
}

// Parse converts a decimal string to a Price. It fails with ErrParse when
// the string is not a valid real number.
func Parse(s string) (Price, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Price{}, ErrParse
	}
	return FromReal(f), nil
}

// Add returns p + q, exact over the integer representation.
func (p Price) Add(q Price) Price { return Price{v: p.v + q.v} }

// Sub returns p - q, exact over the integer representation.
func (p Price) Sub(q Price) Price { return Price{v: p.v - q.v} }

// AddAssign sets *p to *p + q.
func (p *Price) AddAssign(q Price) { p.v += q.v }

// SubAssign sets *p to *p - q.
func (p *Price) SubAssign(q Price) { p.v -= q.v }

// Mul returns p scaled by the integer n.
func (p Price) Mul(n int64) Price { return Price{v: p.v * n} }

// Mul returns p scaled by the integer n, for the "int * Price" calling form
// (n * Price(...)). Equivalent to Price.Mul with the operands swapped.
func Mul(n int64, p Price) Price { return p.Mul(n) }

// Div returns p divided by the integer n, truncating toward zero.
func (p Price) Div(n int64) Price { return Price{v: p.v / n} }

// Cmp returns -1, 0, or 1 as p is less than, equal to, or greater than q.
func (p Price) Cmp(q Price) int {
	switch {
	case p.v < q.v:
		return -1
	case p.v > q.v:
		return 1
	default:
		return 0
	}
}

// Less reports whether p < q.
func (p Price) Less(q Price) bool { return p.v < q.v }

// Equal reports whether p == q.
func (p Price) Equal(q Price) bool { return p.v == q.v }

// IsZero reports whether p is the additive identity.
func (p Price) IsZero() bool { return p.v == 0 }

// IsNegative reports whether p is strictly less than zero.
func (p Price) IsNegative() bool { return p.v < 0 }

// String renders p with a sign, the whole part, always at least two
// fractional digits, and up to six more with trailing zeros trimmed.
// Examples: "1024.65", "1024.00", "0.10", "-15024.015", "1024.010001".
func (p Price) String() string {
	abs := p.v
	if abs < 0 {
		abs = -abs
	}
	wholePart := abs / whole
	part := abs % whole
	cents := part / cent

	buf := make([]byte, 0, 24)
	if p.v < 0 {
		buf = append(buf, '-')
	}
	buf = strconv.AppendInt(buf, wholePart, 10)
	buf = append(buf, '.')
	if cents < 10 {
		buf = append(buf, '0')
	}
	buf = strconv.AppendInt(buf, cents, 10)

	fractional := part % cent
	minWidth := fractionalDigits
	for fractional != 0 && fractional%10 == 0 {
		fractional /= 10
		minWidth--
	}
	if fractional != 0 {
		digits := strconv.FormatInt(fractional, 10)
		for len(digits) < minWidth {
			digits = "0" + digits
		}
		buf = append(buf, digits...)
	}
	return string(buf)
}
