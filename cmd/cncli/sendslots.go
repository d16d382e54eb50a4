package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/config"
	"github.com/cardano-community/cncli-go/pooltool"
)

func sendslotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "sendslots",
		Usage: "report every configured pool's current-epoch slot schedule to pooltool",
		Flags: []cli.Flag{
			poolToolConfigFlag(),
			dbFlag(),
			byronGenesisFlag(),
			shelleyGenesisFlag(),
			shelleyTransitionEpochFlag(),
		},
		Action: runSendslots,
	}
}

func runSendslots(c *cli.Context) error {
	if err := requireExists(c.String("config"), "config"); err != nil {
		printError(err)
		return nil
	}
	cfg, err := config.LoadPoolToolConfig(c.String("config"))
	if err != nil {
		printError(err)
		return nil
	}

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
	epochNum, _ := clk.FirstSlotOfEpoch(tipSlot)

	overrideTime, _ := config.OverrideTime()

	sent := 0
	for _, pool := range cfg.Pools {
		poolID, err := decodePoolID(pool.PoolID)
		if err != nil {
			log.WithError(err).WithField("pool", pool.Name).Warn("skipping pool with malformed pool id")
			continue
		}
		qty, hash, err := s.GetCurrentSlots(c.Context, epochNum, poolID)
		if err != nil {
			log.WithError(err).WithField("pool", pool.Name).Warn("no slot schedule found for this epoch")
			continue
		}
		prevSlots, _, err := s.GetPreviousSlots(c.Context, epochNum-1, poolID)
		if err != nil {
			log.WithError(err).WithField("pool", pool.Name).Warn("failed to load previous epoch's slots")
		}

		client := pooltool.NewClient(cfg.APIKey, pool.PoolID, pool.Name)
		if err := client.SendSlots(c.Context, epochNum, qty, hexEncode(hash[:]), overrideTime, prevSlots); err != nil {
			log.WithError(err).WithField("pool", pool.Name).Warn("pooltool sendslots failed")
			continue
		}
		sent++
	}

	printJSON(struct {
		Status string `json:"status"`
		Sent   int    `json:"sent"`
	}{Status: "ok", Sent: sent})
	return nil
}
