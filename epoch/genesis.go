// Package epoch converts between slots, epochs and wall-clock time across
// the byron/shelley era boundary, the way a Cardano-like chain's genesis
// parameters describe it.
package epoch

// ByronGenesis holds the era-A genesis fields the clock needs: fixed
// slot duration and the "k" security parameter that derives epoch
// length (10k slots).
type ByronGenesis struct {
	StartTime         uint64 // unix seconds
	ProtocolConstantK uint64
	SlotDurationMs    uint64
}

// EpochLength returns the byron era's epoch length in slots, 10*k.
func (b ByronGenesis) EpochLength() uint64 {
	return 10 * b.ProtocolConstantK
}

// ShelleyGenesis holds the era-B genesis fields: slot/epoch length,
// active-slot coefficient and the network magic used to guess the
// transition epoch when no override is supplied.
type ShelleyGenesis struct {
	ActiveSlotsCoeff float64
	NetworkMagic     uint32
	SlotLengthSec    uint64
	EpochLengthSlots uint64
}
