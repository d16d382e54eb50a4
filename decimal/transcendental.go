package decimal

// Verdict is the result of ExpCmp: whether cmp lies above, below, or could
// not be resolved against exp(x) within the iteration budget.
type Verdict int

const (
	Below Verdict = iota
	Above
	MaxReached
)

const maxTaylorN = 1000

var taylorEps = MustFromString("0." + zeros(23) + "1") // 1e-24

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

// IPow raises x to the integer power n, using exponentiation by squaring
// and the reciprocal for negative n.
func IPow(x Decimal, n int) Decimal {
	if n < 0 {
		return ipowPositive(x, -n).Inverse()
	}
	return ipowPositive(x, n)
}

func ipowPositive(x Decimal, n int) Decimal {
	if n == 0 {
		return One
	}
	d, m := n/2, n%2
	if m == 0 {
		y := ipowPositive(x, d)
		return y.Mul(y)
	}
	return x.Mul(ipowPositive(x, n-1))
}

// taylorExp computes the Taylor series sum for exp(x) around x=0, x
// assumed already argument-reduced to a small magnitude.
func taylorExp(x Decimal) Decimal {
	acc := One
	lastX := One
	divisor := 1
	for n := 1; n < maxTaylorN; n++ {
		nextX := lastX.Mul(x)
		nextX = nextX.Quo(FromInt64(int64(divisor)))
		if nextX.Abs().LessThan(taylorEps) {
			return acc
		}
		acc = acc.Add(nextX)
		divisor++
		lastX = nextX
	}
	return acc
}

func scaleExp(x Decimal) (int, Decimal) {
	xp := x.Ceil()
	n := int(xp.Int64())
	return n, x.Quo(xp)
}

// Exp computes exp(x) using argument reduction (scaleExp) followed by a
// Taylor expansion and exponentiation by squaring (IPow) to rebuild the
// full-magnitude result.
func Exp(x Decimal) Decimal {
	switch x.Sign() {
	case 0:
		return One
	case -1:
		return Exp(x.Neg()).Inverse()
	default:
		n, reduced := scaleExp(x)
		taylor := taylorExp(reduced)
		return IPow(taylor, n)
	}
}

// bound finds integer powers l<u of factor with factor^l<=x<=factor^u by
// repeated doubling.
func bound(factor, x, xp, xpp Decimal, l, u int) (int, int) {
	for {
		if xp.LessThanOrEqual(x) && x.LessThanOrEqual(xpp) {
			return l, u
		}
		xp = xp.Mul(xp)
		xpp = xpp.Mul(xpp)
		l *= 2
		u *= 2
	}
}

// contract bisects [l,u] to the smallest n with factor^n<=x<factor^(n+1).
func contract(factor, x Decimal, l, u int) int {
	for l+1 != u {
		mid := l + (u-l)/2
		xp := IPow(factor, mid)
		if x.LessThan(xp) {
			u = mid
		} else {
			l = mid
		}
	}
	return l
}

func findE(e, x Decimal) int {
	l, u := bound(e, x, e.Inverse(), e, -1, 1)
	return contract(e, x, l, u)
}

func splitLn(e, x Decimal) (int, Decimal) {
	n := findE(e, x)
	y := IPow(e, n)
	return n, x.Quo(y).Sub(One)
}

// cf evaluates the continued-fraction recurrence used to approximate
// ln(1+x) for x in [0, infinity).
func cf(maxN int, x, epsilon, aNm2, bNm2, aNm1, bNm1 Decimal) Decimal {
	an := x
	bn := One
	aN := bn.Mul(aNm1).Add(an.Mul(aNm2))
	bN := bn.Mul(bNm1).Add(an.Mul(bNm2))
	aNm2, bNm2 = aNm1, bNm1
	aNm1, bNm1 = aN, bN
	xp := aN.Quo(bN)
	for n := 2; n <= maxN; n++ {
		if n%2 == 0 {
			k := int64(n / 2)
			an = FromInt64(k * k).Mul(x)
		}
		bn = FromInt64(int64(n))
		aN = bn.Mul(aNm1).Add(an.Mul(aNm2))
		bN = bn.Mul(bNm1).Add(an.Mul(bNm2))
		aNm2, bNm2 = aNm1, bNm1
		aNm1, bNm1 = aN, bN
		xn := aN.Quo(bN)
		if xp.Sub(xn).Abs().LessThan(epsilon) {
			return xn
		}
		xp = xn
	}
	return xp
}

func lncf(maxN int, x Decimal) Decimal {
	if x.Sign() < 0 {
		panic("decimal: lncf requires x >= 0")
	}
	return cf(maxN, x, taylorEps, One, Zero, Zero, One)
}

// Ln computes the natural logarithm of x, which must be strictly
// positive: an integral part found by bisection against powers of e,
// plus a continued-fraction refinement of the remaining fraction.
func Ln(x Decimal) Decimal {
	if x.Sign() <= 0 {
		panic("decimal: Ln requires a strictly positive argument")
	}
	e := Exp(One)
	n, xp := splitLn(e, x)
	return FromInt64(int64(n)).Add(lncf(1000, xp))
}

// ExpCmp decides, without ever materializing exp(x), whether cmp is
// above or below exp(x) within a certified error bound (the absolute
// value of the next Taylor term scaled by boundX), or
// whether the iteration budget was exhausted without a decision. This is
// the primitive the leader-election threshold check relies on: comparing
// a fixed probability against exp(-sigma*ln(1-f)) must never go through
// a literal floating-point exp/ln round trip, since that can disagree
// with the reference implementation at the last few decimal digits.
func ExpCmp(boundX int64, cmp, x Decimal) Verdict {
	boundXf := FromInt64(boundX)
	divisor := 1
	acc := One
	err := x
	errorTerm := err.Mul(boundXf).Abs()
	for n := 0; n < maxTaylorN; n++ {
		if cmp.GreaterThanOrEqual(acc.Add(errorTerm)) {
			return Above
		}
		if cmp.LessThan(acc.Sub(errorTerm)) {
			return Below
		}
		divisor++
		nextX := err
		err = err.Mul(x).Quo(FromInt64(int64(divisor)))
		errorTerm = err.Mul(boundXf).Abs()
		acc = acc.Add(nextX)
	}
	return MaxReached
}
