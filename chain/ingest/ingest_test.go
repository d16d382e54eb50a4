package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardano-community/cncli-go/chain"
)

var errSentinel = errors.New("store failure")

type fakeStore struct {
	mu    sync.Mutex
	saved [][]chain.BlockHeader
	err   error
}

func (f *fakeStore) SaveBlocks(ctx context.Context, pending []chain.BlockHeader, genesisHash [32]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, pending)
	return nil
}

func (f *fakeStore) LoadRecentIntersectPoints(ctx context.Context) ([]chain.IntersectPoint, error) {
	return nil, nil
}
func (f *fakeStore) FindBlockByHash(ctx context.Context, hashPrefix string) (*chain.Block, error) {
	return nil, nil
}
func (f *fakeStore) TipSlot(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeStore) EtaVBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	return [32]byte{}, nil
}
func (f *fakeStore) PrevHashBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	return [32]byte{}, nil
}
func (f *fakeStore) SaveSlots(ctx context.Context, epoch uint64, poolID [28]byte, qty uint64, slots string, hash [32]byte) error {
	return nil
}
func (f *fakeStore) GetCurrentSlots(ctx context.Context, epoch uint64, poolID [28]byte) (uint64, [32]byte, error) {
	return 0, [32]byte{}, nil
}
func (f *fakeStore) GetPreviousSlots(ctx context.Context, epoch uint64, poolID [28]byte) (string, bool, error) {
	return "", false, nil
}
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func TestIngestorAppliesBatchesInOrder(t *testing.T) {
	fs := &fakeStore{}
	ig := NewIngestor(fs, [32]byte{})

	batches := make(chan Batch, 2)
	batches <- Batch{Headers: []chain.BlockHeader{{BlockNumber: 1, SlotNumber: 10}}}
	batches <- Batch{Headers: []chain.BlockHeader{{BlockNumber: 2, SlotNumber: 20}}}
	close(batches)

	err := ig.Run(context.Background(), batches)
	require.NoError(t, err)
	require.Equal(t, 2, fs.savedCount())
}

func TestIngestorSkipsEmptyBatches(t *testing.T) {
	fs := &fakeStore{}
	ig := NewIngestor(fs, [32]byte{})

	batches := make(chan Batch, 1)
	batches <- Batch{}
	close(batches)

	err := ig.Run(context.Background(), batches)
	require.NoError(t, err)
	require.Equal(t, 0, fs.savedCount())
}

func TestIngestorStopsOnStoreError(t *testing.T) {
	failing := &fakeStore{err: errSentinel}
	ig := NewIngestor(failing, [32]byte{})

	batches := make(chan Batch, 1)
	batches <- Batch{Headers: []chain.BlockHeader{{BlockNumber: 1, SlotNumber: 10}}}
	close(batches)

	err := ig.Run(context.Background(), batches)
	require.ErrorIs(t, err, errSentinel)
}

func TestIngestorRespectsContextCancellation(t *testing.T) {
	fs := &fakeStore{}
	ig := NewIngestor(fs, [32]byte{})

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan Batch)

	done := make(chan error, 1)
	go func() { done <- ig.Run(ctx, batches) }()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
