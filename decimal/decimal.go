// Package decimal establishes the single process-wide fixed-precision
// decimal context used for every quantity, price, and position in the
// control plane, and the handful of helpers built on top of it.
//
// No package in this module is permitted to perform decimal arithmetic
// against any apd.Context other than Context, and never against a plain
// float64. This mirrors original_source's global DECIMAL_CONTEXT: set
// once, used everywhere, never mutated.
package decimal

import (
	"github.com/cockroachdb/apd/v3"
)

// Decimal is the fixed-precision type used throughout the control plane.
type Decimal = apd.Decimal

// Context is the single decimal arithmetic context: precision 28,
// round-half-even, trapping on invalid operations, division by zero, and
// overflow. It must be established before any decimal arithmetic runs,
// at the entry point of the Observer, Gatekeeper, and Simulator alike.
var Context = apd.Context{
	Precision:   28,
	Rounding:    apd.RoundHalfEven,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.InvalidOperation | apd.DivisionByZero | apd.Overflow,
}

// Zero is the canonical zero-valued Decimal.
func Zero() *Decimal { return apd.New(0, 0) }

// Parse parses a decimal string under Context. A malformed string is a
// programmer/data error at the journal boundary, not a recoverable one —
// callers at the replay/ingest boundary should fail loudly rather than
// silently coerce to zero.
func Parse(s string) (*Decimal, error) {
	d, _, err := Context.NewFromString(s)
	return d, err
}

// MustParse parses a decimal string, panicking on error. Intended for
// constants and test fixtures only.
func MustParse(s string) *Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Add returns x + y under Context, exactly — no float accumulation.
func Add(x, y *Decimal) (*Decimal, error) {
	z := new(Decimal)
	_, err := Context.Add(z, x, y)
	return z, err
}

// Signed applies the BUY/SELL sign convention: signed(q, BUY) = +q,
// signed(q, SELL) = -q.
func Signed(qty *Decimal, side string) *Decimal {
	z := new(Decimal)
	if side == "SELL" {
		z.Neg(qty)
		return z
	}
	z.Set(qty)
	return z
}

// AbsDiff returns |a - b| under Context.
func AbsDiff(a, b *Decimal) (*Decimal, error) {
	z := new(Decimal)
	if _, err := Context.Sub(z, a, b); err != nil {
		return nil, err
	}
	z.Abs(z)
	return z, nil
}

// String returns the canonical decimal string encoding used for hashing
// and journal serialization: plain (non-exponent) notation that keeps the
// value's exponent, so trailing zeros survive (0.4 + 0.6 renders as
// "1.0", not "1").
func String(d *Decimal) string {
	if d == nil {
		return "0"
	}
	return d.Text('f')
}
