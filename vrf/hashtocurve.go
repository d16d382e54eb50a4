package vrf

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
)

// hashToCurve implements ECVRF_hash_to_curve_elligator2_25519: it maps
// the public key and input message onto a point in the prime-order
// subgroup of Edwards25519 via the Elligator2 map over the birationally
// equivalent Curve25519 Montgomery curve, then clears the cofactor.
func hashToCurve(y *edwards25519.Point, alpha []byte) (*edwards25519.Point, error) {
	h := sha512.New()
	h.Write(suiteString)
	h.Write([]byte{0x01})
	h.Write(y.Bytes())
	h.Write(alpha)
	sum := h.Sum(nil)

	truncated := make([]byte, 32)
	copy(truncated, sum[:32])
	truncated[31] &= 0x7f

	r, err := new(field.Element).SetBytes(truncated)
	if err != nil {
		return nil, fmt.Errorf("invalid field element: %w", err)
	}

	u, v := elligator2(r)

	x, vy, err := montgomeryToEdwards(u, v)
	if err != nil {
		return nil, err
	}

	yBytes := vy.Bytes()
	if x.IsNegative() == 1 {
		yBytes[31] |= 0x80
	}
	point, err := new(edwards25519.Point).SetBytes(yBytes)
	if err != nil {
		return nil, fmt.Errorf("mapped point failed to decode: %w", err)
	}
	return clearCofactor(point), nil
}

var (
	montgomeryA     = elementFromUint64(486662)
	montgomeryAPlus = elementFromUint64(486664) // A+2, used for the birational map constant
	feZ             = elementFromUint64(2)
	feOne           = new(field.Element).One()
)

func elementFromUint64(v uint64) *field.Element {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	e, err := new(field.Element).SetBytes(buf[:])
	if err != nil {
		panic(err)
	}
	return e
}

func selectElement(a, b *field.Element, cond int) *field.Element {
	return new(field.Element).Select(a, b, cond)
}

// elligator2 maps a field element r to a point (u, v) on the Curve25519
// Montgomery curve v^2 = u^3 + A*u^2 + u, following RFC 9380 section
// 6.7.1 specialized to A=486662, B=1, Z=2.
func elligator2(r *field.Element) (u, v *field.Element) {
	tv1 := new(field.Element).Multiply(feZ, new(field.Element).Square(r))

	negOne := new(field.Element).Negate(feOne)
	e2 := tv1.Equal(negOne)
	tv1 = selectElement(new(field.Element).Zero(), tv1, e2)

	x1 := new(field.Element).Add(tv1, feOne)
	x1.Invert(x1)
	x1.Multiply(x1, new(field.Element).Negate(montgomeryA))

	t := new(field.Element).Add(x1, montgomeryA)
	t.Multiply(t, x1)
	t.Add(t, feOne)
	gx1 := new(field.Element).Multiply(x1, t)

	x2 := new(field.Element).Negate(x1)
	x2.Subtract(x2, montgomeryA)
	gx2 := new(field.Element).Multiply(tv1, gx1)

	sqrtGx1, wasSquare := new(field.Element).SqrtRatio(gx1, feOne)
	e3 := wasSquare

	x := selectElement(x1, x2, e3)
	y2 := selectElement(gx1, gx2, e3)

	y := new(field.Element).Set(sqrtGx1)
	sqrtY2, wasSquareY2 := new(field.Element).SqrtRatio(y2, feOne)
	if wasSquareY2 == 1 {
		y = sqrtY2
	}

	e4 := y.IsNegative()
	e5 := e3 ^ e4
	negY := new(field.Element).Negate(y)
	y = selectElement(negY, y, e5)

	return x, y
}

// montgomeryToEdwards applies the standard birational map from a
// Curve25519 Montgomery point (u, v) to the corresponding Edwards25519
// affine point (x, y).
func montgomeryToEdwards(u, v *field.Element) (x, y *field.Element, err error) {
	sqrtNegAPlus2, wasSquare := new(field.Element).SqrtRatio(new(field.Element).Negate(montgomeryAPlus), feOne)
	if wasSquare != 1 {
		return nil, nil, fmt.Errorf("curve constant sqrt(-(A+2)) unexpectedly not square")
	}

	vInv := new(field.Element).Invert(v)
	x = new(field.Element).Multiply(sqrtNegAPlus2, u)
	x.Multiply(x, vInv)

	uMinus1 := new(field.Element).Subtract(u, feOne)
	uPlus1 := new(field.Element).Add(u, feOne)
	uPlus1.Invert(uPlus1)
	y = new(field.Element).Multiply(uMinus1, uPlus1)

	return x, y, nil
}
