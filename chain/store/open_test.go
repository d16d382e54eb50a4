package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardano-community/cncli-go/chain/store/sqlstore"
)

func TestOpenCreatesBoltstoreForFreshPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	backend, err := ProbeBackend(path)
	require.NoError(t, err)
	require.Equal(t, BackendBolt, backend)
}

func TestOpenReopensSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.sqlite")

	legacy, err := sqlstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	backend, err := ProbeBackend(path)
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, backend)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.(*sqlstore.Store)
	require.True(t, ok, "Open should dispatch a SQLite-magic path to sqlstore.Store")
}
