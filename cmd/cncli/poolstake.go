package main

import (
	"github.com/urfave/cli/v2"
)

// poolStakeCommand bundles a pool's stake snapshot figures into the same
// sigma/decentralization/extra-entropy triple leaderlog consumes, without
// touching a node. The figures themselves come from a pre-fetched
// cardano-cli query-stake-snapshot/query-protocol-state output; pulling
// them live from a node socket is the out-of-scope collaborator surface
// leaderlog's own flags already sidestep.
func poolStakeCommand() *cli.Command {
	return &cli.Command{
		Name:  "pool-stake",
		Usage: "bundle a pool's stake snapshot figures into a sigma/decentralization summary",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "pool-stake", Required: true, Usage: "pool active stake snapshot value in lovelace"},
			&cli.Uint64Flag{Name: "active-stake", Required: true, Usage: "total active stake snapshot value in lovelace"},
			&cli.Float64Flag{Name: "d", Value: 0, Usage: "decentralization parameter"},
			&cli.StringFlag{Name: "extra-entropy", Usage: "hex string of the extra entropy value"},
		},
		Action: runPoolStake,
	}
}

func runPoolStake(c *cli.Context) error {
	extraEntropy := c.String("extra-entropy")
	if extraEntropy != "" {
		if _, err := decodeHexBytes(extraEntropy); err != nil {
			printError(err)
			return nil
		}
	}

	printJSON(struct {
		Status           string  `json:"status"`
		PoolStake        uint64  `json:"poolStake"`
		ActiveStake      uint64  `json:"activeStake"`
		Decentralization float64 `json:"decentralization"`
		ExtraEntropy     string  `json:"extraEntropy,omitempty"`
	}{
		Status:           "ok",
		PoolStake:        c.Uint64("pool-stake"),
		ActiveStake:      c.Uint64("active-stake"),
		Decentralization: roundToThousandths(c.Float64("d")),
		ExtraEntropy:     extraEntropy,
	})
	return nil
}
