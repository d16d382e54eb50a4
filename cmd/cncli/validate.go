package main

import (
	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "look up a block by hash prefix and report whether it is canonical",
		Flags: []cli.Flag{
			dbFlag(),
			&cli.StringFlag{Name: "hash", Required: true, Usage: "full or partial block hash to validate"},
		},
		Action: runValidate,
	}
}

func runValidate(c *cli.Context) error {
	s, err := openExistingStore(c.String("db"))
	if err != nil {
		printError(err)
		return nil
	}
	defer s.Close()

	block, err := s.FindBlockByHash(c.Context, c.String("hash"))
	if err != nil {
		printError(err)
		return nil
	}
	if block == nil {
		printError(cerr.New(cerr.PathNotFound, "no block found matching hash "+c.String("hash"), nil))
		return nil
	}

	status := "ok"
	if block.Orphaned {
		status = "orphaned"
	}
	printJSON(struct {
		Status      string `json:"status"`
		BlockNumber uint64 `json:"blockNumber"`
		SlotNumber  uint64 `json:"slotNumber"`
		PoolID      string `json:"poolId"`
		Hash        string `json:"hash"`
		PrevHash    string `json:"prevHash"`
		LeaderVRF   string `json:"leaderVrf"`
	}{
		Status:      status,
		BlockNumber: block.BlockNumber,
		SlotNumber:  block.SlotNumber,
		PoolID:      hexEncode(block.PoolID[:]),
		Hash:        hexEncode(block.Hash[:]),
		PrevHash:    hexEncode(block.PrevHash[:]),
		LeaderVRF:   hexEncode(block.LeaderVRF),
	})
	return nil
}
