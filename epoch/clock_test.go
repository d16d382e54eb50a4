package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mainnetClock(t *testing.T) *Clock {
	byron := ByronGenesis{StartTime: 1506203091, ProtocolConstantK: 2160, SlotDurationMs: 20000}
	shelley := ShelleyGenesis{ActiveSlotsCoeff: 0.05, NetworkMagic: 764824073, SlotLengthSec: 1, EpochLengthSlots: 432000}
	c, err := NewClock(byron, shelley, nil, nil)
	require.NoError(t, err)
	return c
}

func TestNewClockRejectsUnknownMagicWithoutOverride(t *testing.T) {
	byron := ByronGenesis{StartTime: 1, ProtocolConstantK: 1, SlotDurationMs: 20000}
	shelley := ShelleyGenesis{NetworkMagic: 999999, SlotLengthSec: 1, EpochLengthSlots: 100}
	_, err := NewClock(byron, shelley, nil, nil)
	require.Error(t, err)
}

func TestNewClockAcceptsExplicitOverride(t *testing.T) {
	byron := ByronGenesis{StartTime: 1, ProtocolConstantK: 1, SlotDurationMs: 20000}
	shelley := ShelleyGenesis{NetworkMagic: 999999, SlotLengthSec: 1, EpochLengthSlots: 100}
	te := uint64(5)
	c, err := NewClock(byron, shelley, &te, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(5), c.TransitionEpoch)
}

func TestFirstSlotOfEpochRoundTrip(t *testing.T) {
	c := mainnetClock(t)
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	slot := byronSlots + c.Shelley.EpochLengthSlots*3 + 12345

	epoch, first := c.FirstSlotOfEpoch(slot)
	require.Equal(t, c.TransitionEpoch+3, epoch)
	require.Equal(t, byronSlots+c.Shelley.EpochLengthSlots*3, first)
	require.LessOrEqual(t, first, slot)
	require.Less(t, slot-first, c.Shelley.EpochLengthSlots)
}

func TestSlotToTimeMonotonic(t *testing.T) {
	c := mainnetClock(t)
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	base := c.SlotToTime(byronSlots + 100)
	next := c.SlotToTime(byronSlots + 101)
	require.True(t, next.After(base))
	require.Equal(t, time.Second, next.Sub(base))
}

func TestSlotToTimestampFormat(t *testing.T) {
	c := mainnetClock(t)
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	ts := c.SlotToTimestamp(byronSlots)
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
}
