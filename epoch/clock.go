package epoch

import (
	"time"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

// TransitionTable maps a network magic to the era-transition epoch E*.
// It is data, not code: callers needing a different network register it
// here or pass an explicit override.
var TransitionTable = map[uint32]uint64{
	764824073:  208, // mainnet
	1097911063: 74,  // testnet / ghostnet
	141:        2,   // guild
	1:          4,   // preprod
	2:          0,   // preview
	4:          0,   // sancho
}

// Clock converts between slots, epochs and wall-clock time across the
// byron/shelley era boundary.
type Clock struct {
	Byron           ByronGenesis
	Shelley         ShelleyGenesis
	TransitionEpoch uint64
	Location        *time.Location
}

// NewClock builds a Clock. If transitionEpoch is nil, the era-transition
// epoch is looked up in TransitionTable by shelley.NetworkMagic; an
// unrecognized magic with no override is a BadInput error rather than a
// silent guess, since guessing wrong here corrupts every downstream slot
// arithmetic and leader-schedule computation.
func NewClock(byron ByronGenesis, shelley ShelleyGenesis, transitionEpoch *uint64, loc *time.Location) (*Clock, error) {
	var te uint64
	if transitionEpoch != nil {
		te = *transitionEpoch
	} else {
		v, ok := TransitionTable[shelley.NetworkMagic]
		if !ok {
			return nil, cerr.New(cerr.BadInput, "unrecognized network magic, supply an explicit transition epoch", nil)
		}
		te = v
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{Byron: byron, Shelley: shelley, TransitionEpoch: te, Location: loc}, nil
}

func (c *Clock) byronEraEndUnix() uint64 {
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	return c.Byron.StartTime + (byronSlots*c.Byron.SlotDurationMs)/1000
}

// AbsoluteSlotAt returns the slot number containing the given unix time.
func (c *Clock) AbsoluteSlotAt(nowUnix int64) uint64 {
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	byronEnd := c.byronEraEndUnix()
	if uint64(nowUnix) <= byronEnd {
		elapsedMs := (uint64(nowUnix) - c.Byron.StartTime) * 1000
		return elapsedMs / c.Byron.SlotDurationMs
	}
	shelleySlots := (uint64(nowUnix) - byronEnd) / c.Shelley.SlotLengthSec
	return byronSlots + shelleySlots
}

// CurrentEpoch returns the epoch containing the given unix time.
func (c *Clock) CurrentEpoch(nowUnix int64) uint64 {
	byronEnd := c.byronEraEndUnix()
	elapsed := uint64(nowUnix) - byronEnd
	return c.TransitionEpoch + elapsed/c.Shelley.SlotLengthSec/c.Shelley.EpochLengthSlots
}

// FirstSlotOfEpoch returns the epoch number and its first slot for the
// given absolute slot.
func (c *Clock) FirstSlotOfEpoch(slot uint64) (epoch uint64, firstSlot uint64) {
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	shelleySlots := slot - byronSlots
	shelleySlotInEpoch := shelleySlots % c.Shelley.EpochLengthSlots
	firstSlot = slot - shelleySlotInEpoch
	epoch = shelleySlots/c.Shelley.EpochLengthSlots + c.TransitionEpoch
	return epoch, firstSlot
}

// SlotToTime returns the UTC wall-clock time of the given absolute slot.
func (c *Clock) SlotToTime(slot uint64) time.Time {
	byronSlots := c.TransitionEpoch * c.Byron.EpochLength()
	shelleySlots := slot - byronSlots

	byronSecs := (c.Byron.SlotDurationMs * byronSlots) / 1000
	shelleySecs := shelleySlots * c.Shelley.SlotLengthSec

	start := time.Unix(int64(c.Byron.StartTime), 0).UTC()
	return start.Add(time.Duration(byronSecs) * time.Second).Add(time.Duration(shelleySecs) * time.Second)
}

// SlotToTimestamp renders the slot's wall-clock time as RFC3339 in the
// clock's configured time zone.
func (c *Clock) SlotToTimestamp(slot uint64) string {
	return c.SlotToTime(slot).In(c.Location).Format(time.RFC3339)
}
