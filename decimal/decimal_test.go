package decimal_test

import (
	"testing"

	"github.com/cardano-community/cncli-go/decimal"
	"github.com/stretchr/testify/require"
)

func TestFromStringRoundTrip(t *testing.T) {
	cases := []string{"0", "1", "-1", "0.32", "-0.32", "123456789.000000000001"}
	for _, c := range cases {
		d, err := decimal.FromString(c)
		require.NoError(t, err)
		require.Equal(t, c, d.String())
	}
}

func TestArithmetic(t *testing.T) {
	a := decimal.MustFromString("1.5")
	b := decimal.MustFromString("0.5")
	require.Equal(t, "2", a.Add(b).String())
	require.Equal(t, "1", a.Sub(b).String())
	require.Equal(t, "0.75", a.Mul(b).String())
	require.Equal(t, "3", a.Quo(b).String())
}

func TestCeil(t *testing.T) {
	require.Equal(t, "3", decimal.MustFromString("2.1").Ceil().String())
	require.Equal(t, "2", decimal.MustFromString("2").Ceil().String())
	require.Equal(t, "-2", decimal.MustFromString("-2.1").Ceil().String())
}

func TestIPow(t *testing.T) {
	base := decimal.MustFromString("2")
	require.Equal(t, "8", decimal.IPow(base, 3).String())
	require.Equal(t, "1", decimal.IPow(base, 0).String())
	require.Equal(t, "0.125", decimal.IPow(base, -3).String())
}

// ExpCmp must agree with a direct (low-precision) float sanity check: for
// cmp well above exp(x) the verdict is Above, and well below it is
// Below (1000 is the error-bound multiplier). This does not assert bit-exact parity with the reference
// implementation (that requires its literal test vectors), only that the
// ternary's two decided branches point the right direction.
func TestExpCmpDirection(t *testing.T) {
	x := decimal.MustFromString("-0.01") // exp(-0.01) ~ 0.99005
	high := decimal.MustFromString("0.999999999999999999999999999999")
	low := decimal.MustFromString("0.000000000000000000000000000001")

	require.Equal(t, decimal.Above, decimal.ExpCmp(1000, high, x))
	require.Equal(t, decimal.Below, decimal.ExpCmp(1000, low, x))
}

func TestExpCmpMonotonic(t *testing.T) {
	x := decimal.MustFromString("-0.05")
	smaller := decimal.MustFromString("0.1")
	larger := decimal.MustFromString("0.9")

	sv := decimal.ExpCmp(1000, smaller, x)
	lv := decimal.ExpCmp(1000, larger, x)
	// larger cmp can never resolve to Below while a smaller cmp resolves
	// to Above for the same x: the verdict is monotonic in cmp.
	if sv == decimal.Above {
		require.Equal(t, decimal.Above, lv)
	}
}

func TestFromBigIntBytes(t *testing.T) {
	d := decimal.FromBigIntBytes([]byte{0x01, 0x00})
	require.Equal(t, "256", d.String())
	require.True(t, decimal.FromBigIntBytes(nil).IsZero())
}

func TestFromFloat64Quantized(t *testing.T) {
	require.Equal(t, "0.05", decimal.FromFloat64Quantized(0.05, 4).String())
	require.Equal(t, "0.1235", decimal.FromFloat64Quantized(0.12345, 4).String())
}

func TestFloat64RoundTrip(t *testing.T) {
	d := decimal.MustFromString("3.25")
	require.InDelta(t, 3.25, d.Float64(), 1e-12)
}

func TestExpLnInverse(t *testing.T) {
	x := decimal.MustFromString("2.5")
	got := decimal.Exp(decimal.Ln(x))
	diff := got.Sub(x).Abs()
	tolerance := decimal.MustFromString("0.0000000000000001")
	require.True(t, diff.LessThan(tolerance), "exp(ln(x)) = %s, want close to %s", got, x)
}
