// Package chain defines the data model shared by the block store, the
// ingestor and the leader schedule engine: the immutable block header as
// streamed from a node, the derived fields the store computes on
// insert, and the per-epoch slot schedule the leader engine produces.
package chain

// BlockHeader is one header as streamed from an upstream node. Every
// field is immutable once stored; derived fields (PoolID, EtaV) are
// computed by the Block Store on insert, not carried on the wire.
type BlockHeader struct {
	BlockNumber  uint64 // monotonically non-decreasing on the canonical chain
	SlotNumber   uint64 // strictly monotonically increasing on the canonical chain
	Hash         [32]byte
	PrevHash     [32]byte
	NodeVKey     []byte // opaque; blake2b-224(NodeVKey) = PoolID
	NodeVRFVKey  []byte // opaque
	EtaVRF0      [32]byte
	EtaVRF1      []byte
	LeaderVRF0   []byte
	LeaderVRF1   []byte
	BlockVRF0    []byte
	BlockVRF1    []byte
	BlockSize    uint64
	BlockBodyHash [32]byte
	PoolOpCert   []byte
	ProtoMajor   uint32
	ProtoMinor   uint32
	// Unknown0/1/2 are opaque legacy header fields the wire format still
	// carries; the store persists them verbatim without interpreting
	// them.
	Unknown0 uint64
	Unknown1 uint64
	Unknown2 []byte
}

// Block is the read-model FindBlockByHash returns: a stored header plus
// the store-computed fields callers care about when validating chain
// state, without re-exposing every wire field.
type Block struct {
	BlockNumber uint64
	SlotNumber  uint64
	Hash        [32]byte
	PrevHash    [32]byte
	PoolID      [28]byte
	LeaderVRF   []byte
	Orphaned    bool
}

// IntersectPoint is a (slot, hash) pair used to anchor chain-sync
// resumption against the upstream source.
type IntersectPoint struct {
	SlotNumber uint64
	Hash       [32]byte
}

// MaxIntersectPoints bounds LoadRecentIntersectPoints results.
const MaxIntersectPoints = 33

// SlotSchedule is the leader engine's output for one (epoch, pool)
// pair: the slots the pool is scheduled to lead and a content hash over
// their canonical textual form.
type SlotSchedule struct {
	Epoch    uint64
	PoolID   [28]byte
	Quantity uint64
	Slots    string
	Hash     [32]byte
}
