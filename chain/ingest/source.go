package ingest

import (
	"context"
	"errors"
)

// Source produces Batches onto out until ctx is cancelled or the
// upstream connection ends. Run does not close out: Pump closes it
// after Run returns. The node-to-node
// handshake and chain-sync mini-protocol that a real Source wraps are
// out of scope for this module: Source only describes the shape
// cmd/cncli's sync command drives, not how a batch gets produced.
type Source interface {
	Run(ctx context.Context, out chan<- Batch) error
}

// Pump wires a Source into an Ingestor: it runs src.Run on the calling
// goroutine (blocking until the source finishes or ctx is cancelled)
// while feeding every Batch it produces to the Ingestor on a background
// goroutine, and returns whichever of the two failed first.
func Pump(ctx context.Context, src Source, ig *Ingestor) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	out := make(chan Batch)
	ingestErr := make(chan error, 1)
	go func() {
		err := ig.Run(ctx, out)
		if err != nil {
			cancel()
		}
		ingestErr <- err
	}()

	srcErr := src.Run(ctx, out)
	close(out)
	igErr := <-ingestErr

	if srcErr != nil && (igErr == nil || !errors.Is(srcErr, context.Canceled)) {
		return srcErr
	}
	return igErr
}
