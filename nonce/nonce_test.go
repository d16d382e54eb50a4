package nonce_test

import (
	"testing"

	"github.com/cardano-community/cncli-go/nonce"
	"github.com/stretchr/testify/require"
)

func fill(b byte) [nonce.Size]byte {
	var out [nonce.Size]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func TestRollingDeterministic(t *testing.T) {
	prev := fill(0x01)
	vrf := fill(0x02)
	a := nonce.Rolling(prev, vrf)
	b := nonce.Rolling(prev, vrf)
	require.Equal(t, a, b)
}

func TestRollingSensitiveToBothInputs(t *testing.T) {
	prev := fill(0x01)
	vrf := fill(0x02)
	base := nonce.Rolling(prev, vrf)

	otherPrev := fill(0x03)
	require.NotEqual(t, base, nonce.Rolling(otherPrev, vrf))

	otherVRF := fill(0x04)
	require.NotEqual(t, base, nonce.Rolling(prev, otherVRF))
}

func TestRollingNotCommutative(t *testing.T) {
	a := fill(0x01)
	b := fill(0x02)
	require.NotEqual(t, nonce.Rolling(a, b), nonce.Rolling(b, a))
}

func TestEpochWithoutExtraEntropy(t *testing.T) {
	nc := fill(0x10)
	nh := fill(0x20)
	a := nonce.Epoch(nc, nh, nil)
	b := nonce.Epoch(nc, nh, []byte{})
	require.Equal(t, a, b, "nil and empty extra entropy must behave identically")
}

func TestEpochExtraEntropyChangesResult(t *testing.T) {
	nc := fill(0x10)
	nh := fill(0x20)
	base := nonce.Epoch(nc, nh, nil)
	withEntropy := nonce.Epoch(nc, nh, []byte{0xAA, 0xBB})
	require.NotEqual(t, base, withEntropy)
}

func TestEpochDeterministic(t *testing.T) {
	nc := fill(0x10)
	nh := fill(0x20)
	a := nonce.Epoch(nc, nh, []byte{0xAA, 0xBB})
	b := nonce.Epoch(nc, nh, []byte{0xAA, 0xBB})
	require.Equal(t, a, b)
}
