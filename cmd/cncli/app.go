package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newApp() *cli.App {
	app := &cli.App{
		Name:    "cncli-go",
		Usage:   "community stake-pool ops tooling: chain indexer, leader schedule calculator, pooltool reporter",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn, error"},
		},
		Before: func(c *cli.Context) error {
			level, err := log.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			syncCommand(),
			leaderlogCommand(),
			nonceCommand(),
			validateCommand(),
			statusCommand(),
			sendslotsCommand(),
			sendtipCommand(),
			challengeCommand(),
			signCommand(),
			verifyCommand(),
			poolStakeCommand(),
			snapshotCommand(),
		},
	}
	return app
}
