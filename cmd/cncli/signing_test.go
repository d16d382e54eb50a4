package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChallengeDeterministic(t *testing.T) {
	nonce := []byte{1, 2, 3, 4}
	a := buildChallenge("pooltool.io", nonce)
	b := buildChallenge("pooltool.io", nonce)
	require.Equal(t, a, b)
}

func TestBuildChallengeVariesWithDomainAndNonce(t *testing.T) {
	base := buildChallenge("pooltool.io", []byte{1, 2, 3})
	require.NotEqual(t, base, buildChallenge("example.com", []byte{1, 2, 3}))
	require.NotEqual(t, base, buildChallenge("pooltool.io", []byte{1, 2, 4}))
}
