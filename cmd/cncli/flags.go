package main

import "github.com/urfave/cli/v2"

// Flag constructors are functions, not package vars, so each
// cli.Command gets its own *cli.XxxFlag instance: urfave/cli registers
// a flag into exactly one Command's FlagSet, and sharing an instance
// across commands would make the second registration silently clobber
// the first.

func dbFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "db", Aliases: []string{"d"}, Value: "./cncli.db", Usage: "database file"}
}

func byronGenesisFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "byron-genesis", Required: true, Usage: "byron genesis json file"}
}

func shelleyGenesisFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "shelley-genesis", Required: true, Usage: "shelley genesis json file"}
}

func timezoneFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "tz", Value: "America/Los_Angeles", Usage: "IANA time zone database name"}
}

func consensusFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "consensus", Aliases: []string{"c"}, Value: "praos", Usage: "consensus algorithm: tpraos, praos or cpraos"}
}

func shelleyTransitionEpochFlag() *cli.Uint64Flag {
	return &cli.Uint64Flag{Name: "shelley-transition-epoch", EnvVars: []string{"SHELLEY_TRANS_EPOCH"}, Usage: "epoch where byron transitions to shelley; omitted guesses from the genesis files' network magic"}
}

func ledgerSetFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "ledger-set", Value: "current", Usage: "which ledger data to use: prev, current or next"}
}

func epochFlag() *cli.Uint64Flag {
	return &cli.Uint64Flag{Name: "epoch", Usage: "specific epoch to calculate for, overrides --ledger-set"}
}

func poolToolConfigFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "config", Value: "./pooltool.json", Usage: "pooltool config file"}
}
