// Package vrf implements the IETF ECVRF-EDWARDS25519-SHA512-Elligator2
// verifiable random function (draft-irtf-cfrg-vrf-03, the "Praos VRF"
// suite used by Cardano for leader election). It provides the three
// primitives a leader-election client needs: Prove, ProofToHash, and
// Verify, operating on the same 64-byte secret key / 32-byte public key
// / 80-byte proof / 64-byte output layout as the reference libsodium
// implementation.
package vrf

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// SecretKeySize is the libsodium-style expanded secret key: a
	// 32-byte seed followed by its 32-byte public key.
	SecretKeySize = 64
	// PublicKeySize is a compressed Edwards25519 point.
	PublicKeySize = 32
	// ProofSize is Gamma (32 bytes) || c (16 bytes) || s (32 bytes).
	ProofSize = 80
	// OutputSize is the full SHA-512 output of ProofToHash.
	OutputSize = 64
)

var suiteString = []byte{0x04}

type Proof struct {
	Gamma *edwards25519.Point
	C     *edwards25519.Scalar
	S     *edwards25519.Scalar
}

func (p *Proof) Encode() [ProofSize]byte {
	var out [ProofSize]byte
	copy(out[0:32], p.Gamma.Bytes())
	copy(out[32:48], p.C.Bytes()[:16])
	copy(out[48:80], p.S.Bytes())
	return out
}

func decodeProof(pi []byte) (*Proof, error) {
	if len(pi) != ProofSize {
		return nil, fmt.Errorf("vrf: proof must be %d bytes, got %d", ProofSize, len(pi))
	}
	gamma, err := new(edwards25519.Point).SetBytes(pi[0:32])
	if err != nil {
		return nil, fmt.Errorf("vrf: invalid Gamma in proof: %w", err)
	}
	var cBytes [32]byte
	copy(cBytes[:16], pi[32:48])
	c, err := new(edwards25519.Scalar).SetCanonicalBytes(cBytes[:])
	if err != nil {
		return nil, fmt.Errorf("vrf: invalid c in proof: %w", err)
	}
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(pi[48:80])
	if err != nil {
		return nil, fmt.Errorf("vrf: invalid s in proof: %w", err)
	}
	return &Proof{Gamma: gamma, C: c, S: s}, nil
}

// expandSecretKey derives the clamped scalar x, the nonce-generation key
// material, and the public point Y from the 32-byte seed half of sk,
// exactly as RFC 8032 Ed25519 key expansion does.
func expandSecretKey(seed []byte) (x *edwards25519.Scalar, noncePrefix []byte, y *edwards25519.Point) {
	h := sha512.Sum512(seed)
	x = new(edwards25519.Scalar).SetBytesWithClamping(h[:32])
	noncePrefix = h[32:64]
	y = new(edwards25519.Point).ScalarBaseMult(x)
	return x, noncePrefix, y
}

func nonceGeneration(noncePrefix, hString []byte) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(noncePrefix)
	h.Write(hString)
	sum := h.Sum(nil)
	k, err := new(edwards25519.Scalar).SetUniformBytes(sum)
	if err != nil {
		// SetUniformBytes only fails on wrong input length; sum is
		// always a 64-byte SHA-512 digest.
		panic(err)
	}
	return k
}

func hashPoints(points ...*edwards25519.Point) *edwards25519.Scalar {
	h := sha512.New()
	h.Write(suiteString)
	h.Write([]byte{0x02})
	for _, p := range points {
		h.Write(p.Bytes())
	}
	sum := h.Sum(nil)
	var cBytes [32]byte
	copy(cBytes[:16], sum[:16])
	c, err := new(edwards25519.Scalar).SetCanonicalBytes(cBytes[:])
	if err != nil {
		panic(err)
	}
	return c
}

func clearCofactor(p *edwards25519.Point) *edwards25519.Point {
	out := edwards25519.NewIdentityPoint().Add(p, p)
	out.Add(out, out)
	out.Add(out, out)
	return out
}

// Prove computes the VRF proof for alpha under sk.
func Prove(sk []byte, alpha []byte) ([ProofSize]byte, error) {
	var out [ProofSize]byte
	if len(sk) != SecretKeySize {
		return out, fmt.Errorf("vrf: secret key must be %d bytes, got %d", SecretKeySize, len(sk))
	}
	x, noncePrefix, y := expandSecretKey(sk[:32])
	h, err := hashToCurve(y, alpha)
	if err != nil {
		return out, fmt.Errorf("vrf: hash-to-curve: %w", err)
	}
	hString := h.Bytes()
	gamma := new(edwards25519.Point).ScalarMult(x, h)
	k := nonceGeneration(noncePrefix, hString)
	kB := new(edwards25519.Point).ScalarBaseMult(k)
	kH := new(edwards25519.Point).ScalarMult(k, h)
	c := hashPoints(h, gamma, kB, kH)
	s := new(edwards25519.Scalar).Add(k, new(edwards25519.Scalar).Multiply(c, x))
	proof := &Proof{Gamma: gamma, C: c, S: s}
	return proof.Encode(), nil
}

// ProofToHash deterministically converts a VRF proof into its 64-byte
// output. It does not re-verify the proof against a public key or
// message; callers that need that guarantee should call Verify, which
// returns the same hash on success.
func ProofToHash(pi []byte) ([OutputSize]byte, error) {
	var out [OutputSize]byte
	proof, err := decodeProof(pi)
	if err != nil {
		return out, err
	}
	return proofToHash(proof), nil
}

func proofToHash(proof *Proof) [OutputSize]byte {
	cleared := clearCofactor(proof.Gamma)
	h := sha512.New()
	h.Write(suiteString)
	h.Write([]byte{0x03})
	h.Write(cleared.Bytes())
	var out [OutputSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PublicKeyFromSecretKey derives the 32-byte public key from the seed
// half of a secret key, the same way key generation and Prove do
// internally.
func PublicKeyFromSecretKey(sk []byte) ([PublicKeySize]byte, error) {
	var out [PublicKeySize]byte
	if len(sk) < 32 {
		return out, fmt.Errorf("vrf: secret key seed must be at least 32 bytes, got %d", len(sk))
	}
	_, _, y := expandSecretKey(sk[:32])
	copy(out[:], y.Bytes())
	return out, nil
}

// Verify checks proof pi against public key pk and message alpha,
// returning the VRF output hash on success.
func Verify(pk []byte, pi []byte, alpha []byte) ([OutputSize]byte, error) {
	var out [OutputSize]byte
	if len(pk) != PublicKeySize {
		return out, fmt.Errorf("vrf: public key must be %d bytes, got %d", PublicKeySize, len(pk))
	}
	y, err := new(edwards25519.Point).SetBytes(pk)
	if err != nil {
		return out, fmt.Errorf("vrf: invalid public key: %w", err)
	}
	proof, err := decodeProof(pi)
	if err != nil {
		return out, err
	}
	h, err := hashToCurve(y, alpha)
	if err != nil {
		return out, fmt.Errorf("vrf: hash-to-curve: %w", err)
	}
	sB := new(edwards25519.Point).ScalarBaseMult(proof.S)
	cY := new(edwards25519.Point).ScalarMult(proof.C, y)
	u := new(edwards25519.Point).Subtract(sB, cY)

	sH := new(edwards25519.Point).ScalarMult(proof.S, h)
	cGamma := new(edwards25519.Point).ScalarMult(proof.C, proof.Gamma)
	v := new(edwards25519.Point).Subtract(sH, cGamma)

	cPrime := hashPoints(h, proof.Gamma, u, v)
	if cPrime.Equal(proof.C) != 1 {
		return out, fmt.Errorf("vrf: proof does not verify against public key")
	}
	return proofToHash(proof), nil
}
