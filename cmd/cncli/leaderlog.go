package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/config"
	"github.com/cardano-community/cncli-go/leaderlog"
)

func leaderlogCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderlog",
		Usage: "calculate a pool's leader schedule for one epoch",
		Flags: []cli.Flag{
			dbFlag(),
			byronGenesisFlag(),
			shelleyGenesisFlag(),
			&cli.Uint64Flag{Name: "pool-stake", Required: true, Usage: "pool active stake snapshot value in lovelace"},
			&cli.Uint64Flag{Name: "active-stake", Required: true, Usage: "total active stake snapshot value in lovelace"},
			&cli.Float64Flag{Name: "d", Value: 0, Usage: "decentralization parameter"},
			&cli.StringFlag{Name: "extra-entropy", Usage: "hex string of the extra entropy value"},
			ledgerSetFlag(),
			&cli.StringFlag{Name: "pool-id", Required: true, Usage: "lower-case hex pool id"},
			&cli.StringFlag{Name: "pool-vrf-skey", Required: true, Usage: "pool's vrf.skey file"},
			timezoneFlag(),
			consensusFlag(),
			shelleyTransitionEpochFlag(),
			&cli.StringFlag{Name: "nonce", Usage: "hex nonce value instead of calculating it from the db"},
			epochFlag(),
		},
		Action: func(c *cli.Context) error { return runLeaderlog(c, false) },
	}
}

func nonceCommand() *cli.Command {
	return &cli.Command{
		Name:  "nonce",
		Usage: "calculate only the epoch nonce",
		Flags: []cli.Flag{
			dbFlag(),
			byronGenesisFlag(),
			shelleyGenesisFlag(),
			&cli.StringFlag{Name: "extra-entropy", Usage: "hex string of the extra entropy value"},
			ledgerSetFlag(),
			shelleyTransitionEpochFlag(),
			consensusFlag(),
			epochFlag(),
		},
		Action: func(c *cli.Context) error { return runLeaderlog(c, true) },
	}
}

func runLeaderlog(c *cli.Context, justNonce bool) error {
	dbPath := c.String("db")
	byronPath := c.String("byron-genesis")
	shelleyPath := c.String("shelley-genesis")

	for _, check := range []struct{ path, flag string }{
		{dbPath, "db"}, {byronPath, "byron-genesis"}, {shelleyPath, "shelley-genesis"},
	} {
		if err := requireExists(check.path, check.flag); err != nil {
			printError(err)
			return nil
		}
	}
	if !justNonce {
		if err := requireExists(c.String("pool-vrf-skey"), "pool-vrf-skey"); err != nil {
			printError(err)
			return nil
		}
	}

	consensus := leaderlog.Consensus(c.String("consensus"))
	switch consensus {
	case leaderlog.Praos, leaderlog.CPraos, leaderlog.TPraos:
	default:
		printError(cerr.New(cerr.BadInput, "invalid consensus: "+c.String("consensus"), nil))
		return nil
	}

	var transitionEpoch *uint64
	if c.IsSet("shelley-transition-epoch") {
		v := c.Uint64("shelley-transition-epoch")
		transitionEpoch = &v
	}
	tz := "America/Los_Angeles"
	if c.IsSet("tz") {
		tz = c.String("tz")
	}
	clk, err := loadClock(byronPath, shelleyPath, transitionEpoch, tz)
	if err != nil {
		printError(err)
		return nil
	}

	s, err := openExistingStore(dbPath)
	if err != nil {
		printError(err)
		return nil
	}
	defer s.Close()

	var extraEntropy []byte
	if c.String("extra-entropy") != "" {
		extraEntropy, err = decodeHexBytes(c.String("extra-entropy"))
		if err != nil {
			printError(err)
			return nil
		}
	}

	ledgerSet, err := leaderlog.ParseLedgerSet(c.String("ledger-set"))
	if err != nil {
		printError(err)
		return nil
	}

	params := leaderlog.Params{
		Clock:        clk,
		Store:        s,
		ExtraEntropy: extraEntropy,
		Consensus:    consensus,
		LedgerSet:    ledgerSet,
		Now:          time.Now(),
	}
	if c.IsSet("epoch") {
		v := c.Uint64("epoch")
		params.Epoch = &v
	}
	if c.String("nonce") != "" {
		n, err := decodeHash32(c.String("nonce"))
		if err != nil {
			printError(err)
			return nil
		}
		params.Nonce = &n
	}

	if !justNonce {
		poolID, err := decodePoolID(c.String("pool-id"))
		if err != nil {
			printError(err)
			return nil
		}
		vrfKey, err := config.LoadVRFKey(c.String("pool-vrf-skey"))
		if err != nil {
			printError(err)
			return nil
		}
		if vrfKey.KeyType != "VrfSigningKey_PraosVRF" {
			printError(cerr.New(cerr.BadInput, "pool vrf skey must be of type VrfSigningKey_PraosVRF", nil))
			return nil
		}
		params.PoolID = poolID
		params.PoolVRFSKey = vrfKey.Key
		params.PoolStake = c.Uint64("pool-stake")
		params.ActiveStake = c.Uint64("active-stake")
		params.D = roundToThousandths(c.Float64("d"))
	}

	result, err := leaderlog.Run(c.Context, params)
	if err != nil {
		printError(err)
		return nil
	}

	if justNonce {
		printJSON(struct {
			Status     string `json:"status"`
			Epoch      uint64 `json:"epoch"`
			EpochNonce string `json:"epochNonce"`
		}{Status: "ok", Epoch: result.Epoch, EpochNonce: hexEncode(result.EpochNonce[:])})
		return nil
	}

	slots := make([]slotOut, 0, len(result.AssignedSlots))
	for _, s := range result.AssignedSlots {
		slots = append(slots, slotOut{No: s.No, Slot: s.Slot, SlotInEpoch: s.SlotInEpoch, At: s.At})
	}
	printJSON(leaderLogOut{
		Status:           "ok",
		Epoch:            result.Epoch,
		EpochNonce:       hexEncode(result.EpochNonce[:]),
		Consensus:        string(result.Consensus),
		EpochSlots:       result.EpochSlots,
		EpochSlotsIdeal:  result.EpochSlotsIdeal,
		MaxPerformance:   result.MaxPerformance,
		PoolID:           hexEncode(result.PoolID[:]),
		Sigma:            result.Sigma,
		ActiveStake:      result.ActiveStake,
		TotalActiveStake: result.TotalActiveStake,
		D:                result.D,
		F:                result.F,
		AssignedSlots:    slots,
	})
	return nil
}

func roundToThousandths(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

type slotOut struct {
	No          uint64 `json:"no"`
	Slot        uint64 `json:"slot"`
	SlotInEpoch uint64 `json:"slotInEpoch"`
	At          string `json:"at"`
}

type leaderLogOut struct {
	Status           string    `json:"status"`
	Epoch            uint64    `json:"epoch"`
	EpochNonce       string    `json:"epochNonce"`
	Consensus        string    `json:"consensus"`
	EpochSlots       uint64    `json:"epochSlots"`
	EpochSlotsIdeal  float64   `json:"epochSlotsIdeal"`
	MaxPerformance   float64   `json:"maxPerformance"`
	PoolID           string    `json:"poolId"`
	Sigma            float64   `json:"sigma"`
	ActiveStake      uint64    `json:"activeStake"`
	TotalActiveStake uint64    `json:"totalActiveStake"`
	D                float64   `json:"d"`
	F                float64   `json:"f"`
	AssignedSlots    []slotOut `json:"assignedSlots"`
}
