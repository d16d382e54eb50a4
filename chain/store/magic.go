package store

import (
	"os"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

// sqliteMagic is the fixed 9-byte prefix common to every valid SQLite
// database file ("SQLite format 3\x00" truncated to 9 bytes, which is
// already enough to disambiguate it from a bbolt file: bbolt's own meta
// page never begins with printable ASCII).
var sqliteMagic = [9]byte{'S', 'Q', 'L', 'i', 't', 'e', ' ', 'f', 'o'}

// Backend identifies which on-disk format a database path uses.
type Backend int

const (
	BackendUnknown Backend = iota
	BackendBolt
	BackendSQLite
)

// ProbeBackend reads the first 9 bytes of path and reports which backend
// created it. A path that does not exist yet, or is empty, is reported
// as BackendUnknown with no error: callers use that to decide which
// backend to create fresh.
func ProbeBackend(path string) (Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BackendUnknown, nil
		}
		return BackendUnknown, cerr.Wrap(cerr.IoError, err, "probe database magic")
	}
	defer f.Close()

	var magic [9]byte
	n, err := f.Read(magic[:])
	if err != nil || n < 9 {
		return BackendUnknown, nil
	}
	if magic == sqliteMagic {
		return BackendSQLite, nil
	}
	// bbolt's meta page carries its own 4-byte magic a few bytes into
	// page 0 rather than as a literal file prefix, so "not SQLite" is
	// our positive signal for a bbolt-backed database.
	return BackendBolt, nil
}
