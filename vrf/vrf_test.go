package vrf_test

import (
	"crypto/rand"
	"testing"

	"github.com/cardano-community/cncli-go/vrf"
	"github.com/stretchr/testify/require"
)

func newSecretKey(t *testing.T) []byte {
	t.Helper()
	sk := make([]byte, vrf.SecretKeySize)
	_, err := rand.Read(sk[:32])
	require.NoError(t, err)
	pk, err := vrf.PublicKeyFromSecretKey(sk)
	require.NoError(t, err)
	copy(sk[32:], pk[:])
	return sk
}

func TestProveVerifyRoundTrip(t *testing.T) {
	sk := newSecretKey(t)
	alpha := []byte("leader-election-test-message")

	proof, err := vrf.Prove(sk, alpha)
	require.NoError(t, err)

	pk, err := vrf.PublicKeyFromSecretKey(sk)
	require.NoError(t, err)

	out, err := vrf.Verify(pk[:], proof[:], alpha)
	require.NoError(t, err)

	hash, err := vrf.ProofToHash(proof[:])
	require.NoError(t, err)
	require.Equal(t, hash, out)
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	sk := newSecretKey(t)
	proof, err := vrf.Prove(sk, []byte("message-a"))
	require.NoError(t, err)

	pk, err := vrf.PublicKeyFromSecretKey(sk)
	require.NoError(t, err)

	_, err = vrf.Verify(pk[:], proof[:], []byte("message-b"))
	require.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk := newSecretKey(t)
	other := newSecretKey(t)
	alpha := []byte("shared-message")

	proof, err := vrf.Prove(sk, alpha)
	require.NoError(t, err)

	otherPK, err := vrf.PublicKeyFromSecretKey(other)
	require.NoError(t, err)

	_, err = vrf.Verify(otherPK[:], proof[:], alpha)
	require.Error(t, err)
}

func TestProveDeterministic(t *testing.T) {
	sk := newSecretKey(t)
	p1, err := vrf.Prove(sk, []byte("fixed-message"))
	require.NoError(t, err)
	p2, err := vrf.Prove(sk, []byte("fixed-message"))
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}

func TestProveRejectsShortKey(t *testing.T) {
	_, err := vrf.Prove(make([]byte, 10), []byte("x"))
	require.Error(t, err)
}
