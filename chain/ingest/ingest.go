// Package ingest drains header batches off an upstream chain-sync source
// into a Block Store. The sync protocol itself is out of scope here: a
// Batch is whatever the caller's wire client produces, and Ingestor is a
// terminal sink with no re-ordering, de-duplication or continuity checks
// beyond what the store's own SaveBlocks performs.
package ingest

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/cardano-community/cncli-go/chain"
	"github.com/cardano-community/cncli-go/chain/store"
)

// Batch is one rollforward/rollback unit handed to the ingestor: pending
// headers to apply, in ascending block-number order.
type Batch struct {
	Headers []chain.BlockHeader
}

// Ingestor applies Batches to a BlockStore as they arrive on a channel.
type Ingestor struct {
	Store       store.BlockStore
	GenesisHash [32]byte
}

// NewIngestor constructs an Ingestor bound to store with genesisHash used
// as the rolling-nonce seed for SaveBlocks calls that reach back past the
// start of recorded history.
func NewIngestor(s store.BlockStore, genesisHash [32]byte) *Ingestor {
	return &Ingestor{Store: s, GenesisHash: genesisHash}
}

// Run consumes batches until ctx is cancelled or the channel closes,
// calling SaveBlocks for each one. It returns the first storage error
// encountered; the caller decides whether that is fatal for the upstream
// connection.
func (ig *Ingestor) Run(ctx context.Context, batches <-chan Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			if len(batch.Headers) == 0 {
				continue
			}
			if err := ig.Store.SaveBlocks(ctx, batch.Headers, ig.GenesisHash); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"count":    len(batch.Headers),
				"tipSlot":  batch.Headers[len(batch.Headers)-1].SlotNumber,
				"tipBlock": batch.Headers[len(batch.Headers)-1].BlockNumber,
			}).Debug("ingested block batch")
		}
	}
}
