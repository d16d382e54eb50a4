package store

import (
	"github.com/cardano-community/cncli-go/chain/store/boltstore"
	"github.com/cardano-community/cncli-go/chain/store/sqlstore"
)

// Open probes path's magic bytes and opens the matching backend. A path
// that doesn't exist yet is created fresh as a boltstore database: that
// is the backend every new cncli-go deployment starts on, with sqlstore
// kept only as the upgrade path for databases an earlier release created.
func Open(path string) (BlockStore, error) {
	backend, err := ProbeBackend(path)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendSQLite:
		return sqlstore.Open(path)
	default:
		return boltstore.Open(path)
	}
}
