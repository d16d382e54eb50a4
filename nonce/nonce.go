// Package nonce computes the two blake2b-256 hashes that drive Cardano's
// epoch-nonce evolution: the per-block rolling nonce folded into the
// chain as blocks are minted, and the per-epoch nonce derived from it at
// a stable point in the following epoch.
package nonce

import "github.com/minio/blake2b-simd"

// Size is the length in bytes of every nonce value in this package.
const Size = 32

// Rolling folds a block's VRF output into the running nonce chain:
// eta_v = blake2b-256(prevEtaV || vrfOutput).
func Rolling(prevEtaV [Size]byte, vrfOutput [Size]byte) [Size]byte {
	h := blake2b.New256()
	h.Write(prevEtaV[:])
	h.Write(vrfOutput[:])
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Epoch derives the nonce that seeds leader-election for an epoch from
// the rolling nonce as of the stability point (nc) and the prev_hash of
// the first block of the previous epoch (nh):
// eta = blake2b-256(nc || nh), optionally folded again with governance
// extra entropy: blake2b-256(blake2b-256(nc || nh) || extraEntropy).
func Epoch(nc, nh [Size]byte, extraEntropy []byte) [Size]byte {
	h := blake2b.New256()
	h.Write(nc[:])
	h.Write(nh[:])
	var base [Size]byte
	copy(base[:], h.Sum(nil))
	if len(extraEntropy) == 0 {
		return base
	}
	h2 := blake2b.New256()
	h2.Write(base[:])
	h2.Write(extraEntropy)
	var out [Size]byte
	copy(out[:], h2.Sum(nil))
	return out
}
