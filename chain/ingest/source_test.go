package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardano-community/cncli-go/chain"
)

func TestPumpDeliversMockSourceToStore(t *testing.T) {
	fs := &fakeStore{}
	ig := NewIngestor(fs, [32]byte{})
	src := &MockSource{Headers: []chain.BlockHeader{
		{BlockNumber: 1, SlotNumber: 10},
		{BlockNumber: 2, SlotNumber: 20},
	}}

	err := Pump(context.Background(), src, ig)
	require.NoError(t, err)
	require.Equal(t, 1, fs.savedCount())
}

func TestPumpPropagatesSourceError(t *testing.T) {
	fs := &fakeStore{}
	ig := NewIngestor(fs, [32]byte{})
	src := &failingSource{err: errSentinel}

	err := Pump(context.Background(), src, ig)
	require.ErrorIs(t, err, errSentinel)
}

type failingSource struct{ err error }

func (f *failingSource) Run(ctx context.Context, out chan<- Batch) error { return f.err }

func TestLoadMockHeadersRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.json")
	headers := []chain.BlockHeader{{BlockNumber: 1, SlotNumber: 10, NodeVKey: []byte{0x01}}}
	payload, err := json.Marshal(headers)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	got, err := LoadMockHeaders(path)
	require.NoError(t, err)
	require.Equal(t, headers, got)
}

func TestLoadMockHeadersMissingFile(t *testing.T) {
	_, err := LoadMockHeaders(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
