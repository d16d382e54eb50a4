// Package decimal implements fixed-precision signed decimal arithmetic
// over an arbitrary-precision integer mantissa, including the
// transcendental exp/ln primitives and the certified ExpCmp ternary
// needed to reproduce Cardano's leader-election threshold check bit for
// bit without ever materializing a floating-point value.
package decimal

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Scale is the number of fractional digits every Decimal in this package
// carries. All arithmetic normalizes back to this scale after each
// operation, mirroring the upstream implementation's `normalize`/`with_scale(34)`
// convention.
const Scale = 34

var scalePow = new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)

// Decimal is a signed fixed-point number: value = mantissa / 10^Scale.
type Decimal struct {
	mantissa *big.Int
}

var (
	Zero = Decimal{mantissa: big.NewInt(0)}
	One  = Decimal{mantissa: new(big.Int).Set(scalePow)}
)

// FromInt64 builds a Decimal representing an exact integer value.
func FromInt64(v int64) Decimal {
	return Decimal{mantissa: new(big.Int).Mul(big.NewInt(v), scalePow)}
}

// FromString parses a base-10 decimal literal such as "-1.5" or "0.32".
// It does not accept scientific notation; none of this package's callers
// need it.
func FromString(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("decimal: empty string")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > Scale {
		return Decimal{}, fmt.Errorf("decimal: %q exceeds %d fractional digits", s, Scale)
	}
	digits := intPart + fracPart + strings.Repeat("0", Scale-len(fracPart))
	mantissa, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("decimal: invalid literal %q", s)
	}
	if neg {
		mantissa.Neg(mantissa)
	}
	return Decimal{mantissa: mantissa}, nil
}

// MustFromString is FromString for literals known to be valid at compile
// time (package-level constants).
func MustFromString(s string) Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromBigIntBytes interprets b as a big-endian unsigned integer and
// returns it as an exact (zero fractional digits) Decimal, the way the
// upstream leader-election arithmetic turns a raw hash or VRF output into
// a certified natural number for threshold comparison.
func FromBigIntBytes(b []byte) Decimal {
	n := new(big.Int).SetBytes(b)
	return Decimal{mantissa: new(big.Int).Mul(n, scalePow)}
}

// FromFloat64Quantized rounds v to the given number of decimal places
// (half away from zero) and returns the exact Decimal for that rounded
// value, avoiding any binary-float rounding noise beyond the requested
// precision.
func FromFloat64Quantized(v float64, places int) Decimal {
	scale := math.Pow(10, float64(places))
	rounded := math.Round(v*scale) / scale
	s := strconv.FormatFloat(rounded, 'f', places, 64)
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Float64 parses a's canonical string form back into a float64. Callers
// use this only for display (JSON report fields), never for further
// certified arithmetic.
func (a Decimal) Float64() float64 {
	f, err := strconv.ParseFloat(a.String(), 64)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRat builds a Decimal as the rounded quotient num/den.
func FromRat(num, den uint64) (Decimal, error) {
	if den == 0 {
		return Decimal{}, fmt.Errorf("decimal: division by zero")
	}
	n := new(big.Int).Mul(big.NewInt(0).SetUint64(num), scalePow)
	d := new(big.Int).SetUint64(den)
	return Decimal{mantissa: divRound(n, d)}, nil
}

func divRound(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() == 0 {
		return q
	}
	twiceR := new(big.Int).Abs(r)
	twiceR.Lsh(twiceR, 1)
	denAbs := new(big.Int).Abs(den)
	if twiceR.Cmp(denAbs) >= 0 {
		if (num.Sign() < 0) != (den.Sign() < 0) {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

// Add returns a+b.
func (a Decimal) Add(b Decimal) Decimal {
	return Decimal{mantissa: new(big.Int).Add(a.mantissa, b.mantissa)}
}

// Sub returns a-b.
func (a Decimal) Sub(b Decimal) Decimal {
	return Decimal{mantissa: new(big.Int).Sub(a.mantissa, b.mantissa)}
}

// Mul returns a*b, rescaled back to Scale fractional digits.
func (a Decimal) Mul(b Decimal) Decimal {
	prod := new(big.Int).Mul(a.mantissa, b.mantissa)
	return Decimal{mantissa: divRound(prod, scalePow)}
}

// Quo returns a/b, rescaled to Scale fractional digits. Panics on
// division by zero; every caller in this module (leader-threshold
// arithmetic) establishes a nonzero divisor before calling Quo, following
// the same assumption the upstream arithmetic makes.
func (a Decimal) Quo(b Decimal) Decimal {
	if b.mantissa.Sign() == 0 {
		panic("decimal: division by zero")
	}
	num := new(big.Int).Mul(a.mantissa, scalePow)
	return Decimal{mantissa: divRound(num, b.mantissa)}
}

// Inverse returns 1/a.
func (a Decimal) Inverse() Decimal {
	return One.Quo(a)
}

// Neg returns -a.
func (a Decimal) Neg() Decimal {
	return Decimal{mantissa: new(big.Int).Neg(a.mantissa)}
}

// Abs returns |a|.
func (a Decimal) Abs() Decimal {
	return Decimal{mantissa: new(big.Int).Abs(a.mantissa)}
}

// Sign returns -1, 0 or 1.
func (a Decimal) Sign() int {
	return a.mantissa.Sign()
}

// IsZero reports whether a is exactly zero.
func (a Decimal) IsZero() bool {
	return a.mantissa.Sign() == 0
}

// Cmp returns -1, 0, or 1 comparing a to b.
func (a Decimal) Cmp(b Decimal) int {
	return a.mantissa.Cmp(b.mantissa)
}

func (a Decimal) Equal(b Decimal) bool              { return a.Cmp(b) == 0 }
func (a Decimal) LessThan(b Decimal) bool           { return a.Cmp(b) < 0 }
func (a Decimal) LessThanOrEqual(b Decimal) bool    { return a.Cmp(b) <= 0 }
func (a Decimal) GreaterThan(b Decimal) bool        { return a.Cmp(b) > 0 }
func (a Decimal) GreaterThanOrEqual(b Decimal) bool { return a.Cmp(b) >= 0 }

// IsInteger reports whether a has no fractional component.
func (a Decimal) IsInteger() bool {
	_, r := new(big.Int).QuoRem(a.mantissa, scalePow, new(big.Int))
	return r.Sign() == 0
}

// Ceil returns the smallest integer-valued Decimal >= a.
func (a Decimal) Ceil() Decimal {
	q, r := new(big.Int).QuoRem(a.mantissa, scalePow, new(big.Int))
	if r.Sign() == 0 {
		return Decimal{mantissa: new(big.Int).Mul(q, scalePow)}
	}
	if a.mantissa.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return Decimal{mantissa: new(big.Int).Mul(q, scalePow)}
}

// Int64 truncates a to its integer part. Callers only use this after
// establishing a fits (epoch-era bookkeeping, small iteration bounds).
func (a Decimal) Int64() int64 {
	q, _ := new(big.Int).QuoRem(a.mantissa, scalePow, new(big.Int))
	return q.Int64()
}

// String renders a in plain decimal notation, trimming trailing
// fractional zeros (but always leaving at least one digit after the
// point when there is a nonzero fractional part).
func (a Decimal) String() string {
	neg := a.mantissa.Sign() < 0
	abs := new(big.Int).Abs(a.mantissa)
	s := abs.String()
	for len(s) <= Scale {
		s = "0" + s
	}
	intPart := s[:len(s)-Scale]
	fracPart := strings.TrimRight(s[len(s)-Scale:], "0")
	var out string
	if fracPart == "" {
		out = intPart
	} else {
		out = intPart + "." + fracPart
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}
