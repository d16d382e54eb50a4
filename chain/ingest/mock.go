package ingest

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cardano-community/cncli-go/chain"
	"github.com/cardano-community/cncli-go/chain/cerr"
)

// MockSource replays a fixed, pre-recorded sequence of headers as a
// single Batch. It stands in for the node-to-node chain-sync client
// this module does not ship, so `sync` can be exercised end to end
// against a local store without a live cardano-node.
type MockSource struct {
	Headers []chain.BlockHeader
}

// LoadMockHeaders reads a JSON array of chain.BlockHeader from path, the
// format cmd/cncli's sync --mock-source flag expects.
func LoadMockHeaders(path string) ([]chain.BlockHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerr.New(cerr.PathNotFound, "mock source file not found: "+path, err)
		}
		return nil, cerr.Wrap(cerr.IoError, err, "open mock source file")
	}
	defer f.Close()

	var headers []chain.BlockHeader
	if err := json.NewDecoder(f).Decode(&headers); err != nil {
		return nil, cerr.Wrap(cerr.BadInput, err, "parse mock source file")
	}
	return headers, nil
}

// Run delivers every header as one Batch, then returns.
func (m *MockSource) Run(ctx context.Context, out chan<- Batch) error {
	if len(m.Headers) == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- Batch{Headers: m.Headers}:
		return nil
	}
}
