// Package store defines the BlockStore contract both on-disk backends
// implement and the magic-byte probe used to pick between them.
package store

import (
	"context"

	"github.com/cardano-community/cncli-go/chain"
)

// BlockStore is the durable, rollback-aware header store plus the
// per-epoch slot-schedule table the leader engine writes to.
type BlockStore interface {
	// SaveBlocks ingests pending in ascending block-number order. If
	// pending[0].BlockNumber is <= the current tip, every canonical
	// header with BlockNumber >= pending[0].BlockNumber is flipped to
	// orphaned before the new headers are inserted as canonical.
	SaveBlocks(ctx context.Context, pending []chain.BlockHeader, genesisHash [32]byte) error

	// LoadRecentIntersectPoints returns up to chain.MaxIntersectPoints
	// (slot, hash) pairs for the most recent canonical headers, newest
	// first.
	LoadRecentIntersectPoints(ctx context.Context) ([]chain.IntersectPoint, error)

	// FindBlockByHash returns the first header whose hash starts with
	// hashPrefix (a hex string), preferring a canonical match over an
	// orphaned one.
	FindBlockByHash(ctx context.Context, hashPrefix string) (*chain.Block, error)

	// TipSlot returns the highest slot number among stored headers,
	// orphaned or not, or 0 if the store is empty.
	TipSlot(ctx context.Context) (uint64, error)

	// EtaVBeforeSlot returns the rolling nonce of the latest canonical
	// header with SlotNumber < slot.
	EtaVBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error)

	// PrevHashBeforeSlot returns the prev_hash of the latest canonical
	// header with SlotNumber < slot.
	PrevHashBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error)

	// SaveSlots upserts the schedule row for (epoch, poolID).
	SaveSlots(ctx context.Context, epoch uint64, poolID [28]byte, qty uint64, slots string, hash [32]byte) error

	// GetCurrentSlots returns the stored schedule for (epoch, poolID).
	GetCurrentSlots(ctx context.Context, epoch uint64, poolID [28]byte) (qty uint64, hash [32]byte, err error)

	// GetPreviousSlots returns the stored slots text for (epoch,
	// poolID), or ok=false if no row exists.
	GetPreviousSlots(ctx context.Context, epoch uint64, poolID [28]byte) (slots string, ok bool, err error)

	Close() error
}
