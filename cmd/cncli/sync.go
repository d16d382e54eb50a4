package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/chain/ingest"
	"github.com/cardano-community/cncli-go/chain/store"
	"github.com/cardano-community/cncli-go/chain/store/boltstore"
	"github.com/cardano-community/cncli-go/metrics"
)

// syncCommand drains a chain-sync source into the block store. This
// build carries no node-to-node wire client (the handshake and
// chain-sync mini-protocol are an external collaborator's concern), so
// --mock-source is the only Source wired here: a JSON array of block
// headers replayed as a single batch, for driving the store end to end
// without a live cardano-node.
func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "ingest block headers from a chain-sync source into the database",
		Flags: []cli.Flag{
			dbFlag(),
			&cli.StringFlag{
				Name:     "mock-source",
				Required: true,
				Usage:    "path to a JSON array of block headers to replay (this build ships no live chain-sync transport)",
			},
			&cli.StringFlag{
				Name:  "shelley-genesis-hash",
				Value: "1a3be38bcbb7911969283716ad7aa550250226b76a61fc51cc9a9a35d9276d81",
				Usage: "shelley genesis hash value, used as the rolling-nonce seed for headers at the start of recorded history",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "if set, expose bbolt bucket stats and Go runtime metrics on this address (e.g. :9090) at /metrics",
			},
		},
		Action: runSync,
	}
}

func runSync(c *cli.Context) error {
	genesisHash, err := decodeHash32(c.String("shelley-genesis-hash"))
	if err != nil {
		printError(err)
		return nil
	}

	headers, err := ingest.LoadMockHeaders(c.String("mock-source"))
	if err != nil {
		printError(err)
		return nil
	}

	s, err := store.Open(c.String("db"))
	if err != nil {
		printError(err)
		return nil
	}
	defer s.Close()

	if addr := c.String("metrics-addr"); addr != "" {
		if bs, ok := s.(*boltstore.Store); ok {
			metricsCtx, cancel := context.WithCancel(c.Context)
			defer cancel()
			go metrics.Serve(metricsCtx, addr, metrics.NewBoltCollector(bs.DB()))
		}
	}

	ig := ingest.NewIngestor(s, genesisHash)
	src := &ingest.MockSource{Headers: headers}
	if err := ingest.Pump(c.Context, src, ig); err != nil {
		printError(err)
		return nil
	}

	tip, err := s.TipSlot(c.Context)
	if err != nil {
		printError(err)
		return nil
	}
	printJSON(struct {
		Status  string `json:"status"`
		TipSlot uint64 `json:"tipSlot"`
	}{Status: "ok", TipSlot: tip})
	return nil
}
