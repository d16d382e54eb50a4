package leaderlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardano-community/cncli-go/decimal"
)

func TestIsOverlaySlotBoundary(t *testing.T) {
	// d=1.0 means every slot is an overlay slot.
	require.True(t, IsOverlaySlot(1000, 1000, 1.0))
	require.True(t, IsOverlaySlot(1000, 1005, 1.0))
}

func TestIsOverlaySlotZeroDecentralization(t *testing.T) {
	// d=0 means no slot is an overlay slot.
	for s := uint64(1000); s < 1010; s++ {
		require.False(t, IsOverlaySlot(1000, s, 0.0))
	}
}

func TestIsOverlaySlotPartialDecentralization(t *testing.T) {
	overlayCount := 0
	const epochLen = 100
	for i := uint64(0); i < epochLen; i++ {
		if IsOverlaySlot(0, i, 0.2) {
			overlayCount++
		}
	}
	require.InDelta(t, 20, overlayCount, 2)
}

func TestMkSeedTPraosDiffersFromInputVRF(t *testing.T) {
	eta0 := [32]byte{1, 2, 3}
	a := mkInputVRF(42, eta0)
	b := mkSeedTPraos(42, eta0)
	require.NotEqual(t, a, b)
}

func TestMkInputVRFDeterministic(t *testing.T) {
	eta0 := [32]byte{9, 9, 9}
	require.Equal(t, mkInputVRF(7, eta0), mkInputVRF(7, eta0))
	require.NotEqual(t, mkInputVRF(7, eta0), mkInputVRF(8, eta0))
}

func TestParseLedgerSet(t *testing.T) {
	cases := map[string]LedgerSet{
		"next":    Mark,
		"current": Set,
		"prev":    GoSet,
	}
	for in, want := range cases {
		got, err := ParseLedgerSet(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseLedgerSetRejectsUnknown(t *testing.T) {
	_, err := ParseLedgerSet("bogus")
	require.Error(t, err)
}

// TestIsOverlaySlotGuildnetVector replays the first_slot_of_epoch=15724800,
// d=0.32 vector checked against two slots a guildnet epoch actually saw.
func TestIsOverlaySlotGuildnetVector(t *testing.T) {
	const firstSlotOfEpoch = 15724800
	require.False(t, IsOverlaySlot(firstSlotOfEpoch, 16128499, 0.32))
	require.True(t, IsOverlaySlot(firstSlotOfEpoch, 15920150, 0.32))
}

// TestCertNatMaxima pins the certified-natural-number maxima used as the
// denominator of the praos/cpraos and tpraos leader-value thresholds:
// cert_max = 2^256 for praos/cpraos, 2^512 for tpraos. Getting either of
// these even slightly wrong silently shifts every slot's leader/non-leader
// decision near the threshold boundary.
func TestCertNatMaxima(t *testing.T) {
	two256 := decimal.FromInt64(1)
	for i := 0; i < 256; i++ {
		two256 = two256.Add(two256)
	}
	require.True(t, certNatMaxPraos.Equal(two256))

	two512 := decimal.FromInt64(1)
	for i := 0; i < 512; i++ {
		two512 = two512.Add(two512)
	}
	require.True(t, certNatMaxTPraos.Equal(two512))
}

// TestLeaderLogMathVector replays the upstream reference's round(-c*sigma)
// vector at the module's 34-digit fixed scale.
func TestLeaderLogMathVector(t *testing.T) {
	sigma := decimal.MustFromString("0.0077949348290607914969808129687391")
	c := decimal.MustFromString("-0.0512932943875505334261962382072846")
	x := c.Neg().Mul(sigma)
	want := decimal.MustFromString("0.0003998278869187860731522824872380")
	require.True(t, x.Equal(want), "got %s, want %s", x.String(), want.String())
}
