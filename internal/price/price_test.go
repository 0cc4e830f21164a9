package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplay(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1024.65, "1024.65"},
		{1024., "1024.00"},
		{15024.015, "15024.015"},
		{1024.0151, "1024.0151"},
		{1024.01512, "1024.01512"},
		{1024.010001, "1024.010001"},
		{0.10, "0.10"},
		{0.0, "0.00"},
		{-1024.65, "-1024.65"},
		{-0.10, "-0.10"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FromReal(c.in).String(), "input %v", c.in)
	}
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, FromReal(110.), FromReal(11.).Mul(10))
	assert.Equal(t, FromReal(110.), Mul(10, FromReal(11.)))
	assert.Equal(t, FromReal(11.), FromReal(110.).Div(10))
	assert.Equal(t, FromReal(25.), FromReal(10.).Add(FromReal(15.)))
}

func TestAddSubRoundTrip(t *testing.T) {
	a := FromReal(123.45)
	b := FromReal(67.89)
	assert.Equal(t, a, a.Add(b).Sub(b))
}

func TestOrderingAndEquality(t *testing.T) {
	a := FromReal(1.0)
	b := FromReal(2.0)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Equal(FromReal(1.0)))
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(FromReal(1.0)))
}

func TestHashable(t *testing.T) {
	m := map[Price]string{}
	m[FromReal(10.0)] = "ten"
	m[FromReal(10.0)] = "ten-again"
	assert.Len(t, m, 1)
	assert.Equal(t, "ten-again", m[FromReal(10.0)])
}

func TestParse(t *testing.T) {
	p, err := Parse("1024.65")
	assert.NoError(t, err)
	assert.Equal(t, FromReal(1024.65), p)

	_, err = Parse("not-a-number")
	assert.ErrorIs(t, err, ErrParse)
}

func TestZero(t *testing.T) {
	assert.True(t, Zero().IsZero())
	assert.False(t, FromReal(0.01).IsZero())
}
