package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "report whether the local database is caught up with wall-clock time",
		Flags: []cli.Flag{
			dbFlag(),
			byronGenesisFlag(),
			shelleyGenesisFlag(),
			shelleyTransitionEpochFlag(),
		},
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	if err := requireExists(c.String("db"), "db"); err != nil {
		printError(err)
		return nil
	}

	var transitionEpoch *uint64
	if c.IsSet("shelley-transition-epoch") {
		v := c.Uint64("shelley-transition-epoch")
		transitionEpoch = &v
	}
	clk, err := loadClock(c.String("byron-genesis"), c.String("shelley-genesis"), transitionEpoch, "UTC")
	if err != nil {
		printError(err)
		return nil
	}

	s, err := openExistingStore(c.String("db"))
	if err != nil {
		printError(err)
		return nil
	}
	defer s.Close()

	tipSlot, err := s.TipSlot(c.Context)
	if err != nil {
		printError(err)
		return nil
	}

	tipTime := clk.SlotToTime(tipSlot)
	if time.Since(tipTime) >= 120*time.Second {
		printError(cerr.New(cerr.NotSynced, "db not fully synced", nil))
		return nil
	}
	printOK()
	return nil
}
