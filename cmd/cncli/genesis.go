package main

import (
	"os"
	"time"

	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/chain/store"
	"github.com/cardano-community/cncli-go/config"
	"github.com/cardano-community/cncli-go/epoch"
)

// loadClock reads both genesis files and builds an epoch.Clock, letting
// an explicit transitionEpochFlag win over the SHELLEY_TRANS_EPOCH env
// var, which in turn wins over epoch.Clock's own network-magic table.
func loadClock(byronPath, shelleyPath string, transitionEpochFlag *uint64, tz string) (*epoch.Clock, error) {
	byron, err := config.LoadByronGenesis(byronPath)
	if err != nil {
		return nil, err
	}
	shelley, err := config.LoadShelleyGenesis(shelleyPath)
	if err != nil {
		return nil, err
	}

	transitionEpoch := transitionEpochFlag
	if transitionEpoch == nil {
		if v, ok, err := config.ShelleyTransitionEpochOverride(); err != nil {
			return nil, err
		} else if ok {
			transitionEpoch = &v
		}
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, cerr.Wrap(cerr.BadInput, err, "parse timezone")
	}
	return epoch.NewClock(byron, shelley, transitionEpoch, loc)
}

// requireExists mirrors the original CLI's upfront path checks, giving
// a clear BadInput error naming the offending flag instead of letting
// the failure surface from deep inside genesis/database loading.
func requireExists(path, flagName string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cerr.New(cerr.PathNotFound, "invalid path: --"+flagName+" "+path, err)
		}
		return cerr.Wrap(cerr.IoError, err, "stat --"+flagName)
	}
	return nil
}

// openExistingStore opens db at path, refusing to silently create a
// fresh empty database for subcommands that only make sense against an
// already-synced store (leaderlog, nonce, status, validate, sendslots).
func openExistingStore(path string) (store.BlockStore, error) {
	if err := requireExists(path, "db"); err != nil {
		return nil, err
	}
	return store.Open(path)
}
