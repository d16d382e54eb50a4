// Package sqlstore is the relational BlockStore backend, built on
// modernc.org/sqlite (a pure-Go SQLite, no cgo). It follows the upstream
// implementation's versioned migration ladder (v1 through v4) so a
// database created by an earlier cncli-go release upgrades in place.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cardano-community/cncli-go/chain"
	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/nonce"
)

const dbVersion = 4

// Store is the sqlite-backed BlockStore implementation.
type Store struct {
	db *sql.DB
}

// Open creates or opens a sqlite database at path and runs any pending
// migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cerr.Wrap(cerr.IoError, err, "open sqlite database")
	}
	db.SetMaxOpenConns(1) // sqlite write-serializes anyway; avoids SQLITE_BUSY churn
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, cerr.Wrap(cerr.IoError, err, "set sqlite journal mode")
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return cerr.Wrap(cerr.IoError, err, "begin migration tx")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("CREATE TABLE IF NOT EXISTS db_version (version INTEGER PRIMARY KEY)"); err != nil {
		return cerr.Wrap(cerr.StorageIntegrity, err, "create db_version table")
	}
	version := int64(-1)
	row := tx.QueryRow("SELECT version FROM db_version")
	if err := row.Scan(&version); err != nil && err != sql.ErrNoRows {
		return cerr.Wrap(cerr.StorageIntegrity, err, "read db_version")
	}

	if version < 1 {
		for _, stmt := range []string{
			`CREATE TABLE IF NOT EXISTS chain (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				block_number INTEGER NOT NULL,
				slot_number INTEGER NOT NULL,
				hash TEXT NOT NULL,
				prev_hash TEXT NOT NULL,
				eta_v TEXT NOT NULL,
				node_vkey TEXT NOT NULL,
				node_vrf_vkey TEXT NOT NULL,
				eta_vrf_0 TEXT NOT NULL,
				eta_vrf_1 TEXT NOT NULL,
				leader_vrf_0 TEXT NOT NULL,
				leader_vrf_1 TEXT NOT NULL,
				block_size INTEGER NOT NULL,
				block_body_hash TEXT NOT NULL,
				pool_opcert TEXT NOT NULL,
				unknown_0 INTEGER NOT NULL,
				unknown_1 INTEGER NOT NULL,
				unknown_2 TEXT NOT NULL,
				protocol_major_version INTEGER NOT NULL,
				protocol_minor_version INTEGER NOT NULL,
				orphaned INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_slot_number ON chain(slot_number)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_orphaned ON chain(orphaned)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_hash ON chain(hash)`,
			`CREATE INDEX IF NOT EXISTS idx_chain_block_number ON chain(block_number)`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 1")
			}
		}
	}

	if version < 2 {
		stmt := `CREATE TABLE IF NOT EXISTS slots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			epoch INTEGER NOT NULL,
			pool_id TEXT NOT NULL,
			slot_qty INTEGER NOT NULL,
			slots TEXT NOT NULL,
			hash TEXT NOT NULL,
			UNIQUE(epoch, pool_id)
		)`
		if _, err := tx.Exec(stmt); err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 2")
		}
	}

	if version < 3 {
		for _, stmt := range []string{
			`CREATE INDEX IF NOT EXISTS idx_chain_node_vkey ON chain(node_vkey)`,
			`ALTER TABLE chain ADD COLUMN pool_id TEXT NOT NULL DEFAULT ''`,
			`CREATE INDEX IF NOT EXISTS idx_chain_pool_id ON chain(pool_id)`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 3")
			}
		}
		rows, err := tx.Query("SELECT DISTINCT node_vkey FROM chain")
		if err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 3: list node_vkeys")
		}
		var vkeys []string
		for rows.Next() {
			var vkey string
			if err := rows.Scan(&vkey); err != nil {
				rows.Close()
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 3: scan node_vkey")
			}
			vkeys = append(vkeys, vkey)
		}
		rows.Close()
		for _, vkey := range vkeys {
			raw, err := hex.DecodeString(vkey)
			if err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 3: decode node_vkey")
			}
			poolID := chain.PoolID(raw)
			if _, err := tx.Exec("UPDATE chain SET pool_id=? WHERE node_vkey=?", hex.EncodeToString(poolID[:]), vkey); err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 3: backfill pool_id")
			}
		}
	}

	if version < 4 {
		for _, stmt := range []string{
			`ALTER TABLE chain ADD COLUMN block_vrf_0 TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE chain ADD COLUMN block_vrf_1 TEXT NOT NULL DEFAULT ''`,
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "migrate to version 4")
			}
		}
	}

	if version < 0 {
		if _, err := tx.Exec("INSERT INTO db_version (version) VALUES (?)", dbVersion); err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "insert db_version")
		}
	} else if version < dbVersion {
		if _, err := tx.Exec("UPDATE db_version SET version=?", dbVersion); err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "update db_version")
		}
	}

	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBlocks implements store.BlockStore.
func (s *Store) SaveBlocks(ctx context.Context, pending []chain.BlockHeader, genesisHash [32]byte) error {
	if len(pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cerr.Wrap(cerr.IoError, err, "begin save-blocks tx")
	}
	defer tx.Rollback()

	prevEtaV, err := s.etaVBeforeBlock(tx, pending[0].BlockNumber, genesisHash)
	if err != nil {
		return err
	}

	for _, h := range pending {
		res, err := tx.ExecContext(ctx, "UPDATE chain SET orphaned = 1 WHERE block_number >= ?", h.BlockNumber)
		if err != nil {
			return cerr.Wrap(cerr.IoError, err, "orphan superseded blocks")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			refreshed, err := s.etaVBeforeBlock(tx, h.BlockNumber, genesisHash)
			if err != nil {
				return err
			}
			prevEtaV = refreshed
		}

		etaV := nonce.Rolling(prevEtaV, h.EtaVRF0)
		poolID := chain.PoolID(h.NodeVKey)

		_, err = tx.ExecContext(ctx, `INSERT INTO chain (
			block_number, slot_number, hash, prev_hash, pool_id, eta_v,
			node_vkey, node_vrf_vkey, block_vrf_0, block_vrf_1,
			eta_vrf_0, eta_vrf_1, leader_vrf_0, leader_vrf_1,
			block_size, block_body_hash, pool_opcert,
			unknown_0, unknown_1, unknown_2,
			protocol_major_version, protocol_minor_version
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			h.BlockNumber, h.SlotNumber, hex.EncodeToString(h.Hash[:]), hex.EncodeToString(h.PrevHash[:]),
			hex.EncodeToString(poolID[:]), hex.EncodeToString(etaV[:]),
			hex.EncodeToString(h.NodeVKey), hex.EncodeToString(h.NodeVRFVKey),
			hex.EncodeToString(h.BlockVRF0), hex.EncodeToString(h.BlockVRF1),
			hex.EncodeToString(h.EtaVRF0[:]), hex.EncodeToString(h.EtaVRF1),
			hex.EncodeToString(h.LeaderVRF0), hex.EncodeToString(h.LeaderVRF1),
			h.BlockSize, hex.EncodeToString(h.BlockBodyHash[:]), hex.EncodeToString(h.PoolOpCert),
			h.Unknown0, h.Unknown1, hex.EncodeToString(h.Unknown2),
			h.ProtoMajor, h.ProtoMinor,
		)
		if err != nil {
			return cerr.Wrap(cerr.IoError, err, "insert chain row")
		}
		prevEtaV = etaV
	}

	return tx.Commit()
}

func (s *Store) etaVBeforeBlock(tx *sql.Tx, blockNumber uint64, genesisHash [32]byte) ([32]byte, error) {
	if blockNumber == 0 {
		return genesisHash, nil
	}
	var etaVHex string
	err := tx.QueryRow(
		"SELECT eta_v FROM chain WHERE block_number = ? AND orphaned = 0", blockNumber-1,
	).Scan(&etaVHex)
	if err == sql.ErrNoRows {
		return genesisHash, nil
	}
	if err != nil {
		return [32]byte{}, cerr.Wrap(cerr.IoError, err, "look up predecessor eta_v")
	}
	return decodeHash32(etaVHex)
}

// LoadRecentIntersectPoints implements store.BlockStore.
func (s *Store) LoadRecentIntersectPoints(ctx context.Context) ([]chain.IntersectPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot_number, hash FROM (
			SELECT slot_number, hash, orphaned FROM chain ORDER BY slot_number DESC LIMIT 100
		) WHERE orphaned = 0 ORDER BY slot_number DESC LIMIT ?`, chain.MaxIntersectPoints)
	if err != nil {
		return nil, cerr.Wrap(cerr.IoError, err, "load intersect points")
	}
	defer rows.Close()

	var points []chain.IntersectPoint
	for rows.Next() {
		var slot uint64
		var hashHex string
		if err := rows.Scan(&slot, &hashHex); err != nil {
			return nil, cerr.Wrap(cerr.StorageIntegrity, err, "scan intersect point")
		}
		hash, err := decodeHash32(hashHex)
		if err != nil {
			return nil, err
		}
		points = append(points, chain.IntersectPoint{SlotNumber: slot, Hash: hash})
	}
	return points, rows.Err()
}

// FindBlockByHash implements store.BlockStore.
func (s *Store) FindBlockByHash(ctx context.Context, hashPrefix string) (*chain.Block, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT block_number, slot_number, hash, prev_hash, pool_id, leader_vrf_0, orphaned
		 FROM chain WHERE hash LIKE ? ORDER BY orphaned ASC LIMIT 1`, hashPrefix+"%")

	var b chain.Block
	var hashHex, prevHashHex, poolIDHex, leaderVRFHex string
	var orphaned int
	err := row.Scan(&b.BlockNumber, &b.SlotNumber, &hashHex, &prevHashHex, &poolIDHex, &leaderVRFHex, &orphaned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, cerr.Wrap(cerr.IoError, err, "find block by hash")
	}
	if b.Hash, err = decodeHash32(hashHex); err != nil {
		return nil, err
	}
	if b.PrevHash, err = decodeHash32(prevHashHex); err != nil {
		return nil, err
	}
	poolIDBytes, err := hex.DecodeString(poolIDHex)
	if err != nil {
		return nil, cerr.Wrap(cerr.StorageIntegrity, err, "decode pool_id")
	}
	copy(b.PoolID[:], poolIDBytes)
	if leaderVRFHex != "" {
		if b.LeaderVRF, err = hex.DecodeString(leaderVRFHex); err != nil {
			return nil, cerr.Wrap(cerr.StorageIntegrity, err, "decode leader_vrf_0")
		}
	}
	b.Orphaned = orphaned != 0
	return &b, nil
}

// TipSlot implements store.BlockStore.
func (s *Store) TipSlot(ctx context.Context) (uint64, error) {
	var tip sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(slot_number) FROM chain").Scan(&tip)
	if err != nil {
		return 0, cerr.Wrap(cerr.IoError, err, "read tip slot")
	}
	return uint64(tip.Int64), nil
}

// EtaVBeforeSlot implements store.BlockStore.
func (s *Store) EtaVBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	return s.hash32BeforeSlot(ctx, slot, "eta_v")
}

// PrevHashBeforeSlot implements store.BlockStore.
func (s *Store) PrevHashBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	return s.hash32BeforeSlot(ctx, slot, "prev_hash")
}

func (s *Store) hash32BeforeSlot(ctx context.Context, slot uint64, column string) ([32]byte, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM chain WHERE orphaned = 0 AND slot_number < ? ORDER BY slot_number DESC LIMIT 1", column)
	var hashHex string
	err := s.db.QueryRowContext(ctx, query, slot).Scan(&hashHex)
	if err == sql.ErrNoRows {
		return [32]byte{}, cerr.New(cerr.InsufficientHistory, "no canonical header before requested slot", nil)
	}
	if err != nil {
		return [32]byte{}, cerr.Wrap(cerr.IoError, err, "look up "+column+" before slot")
	}
	return decodeHash32(hashHex)
}

// SaveSlots implements store.BlockStore.
func (s *Store) SaveSlots(ctx context.Context, epoch uint64, poolID [28]byte, qty uint64, slots string, hash [32]byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (epoch, pool_id, slot_qty, slots, hash) VALUES (?,?,?,?,?)
		 ON CONFLICT (epoch, pool_id) DO UPDATE SET slot_qty=excluded.slot_qty, slots=excluded.slots, hash=excluded.hash`,
		epoch, hex.EncodeToString(poolID[:]), qty, slots, hex.EncodeToString(hash[:]))
	if err != nil {
		return cerr.Wrap(cerr.IoError, err, "save slot schedule")
	}
	return nil
}

// GetCurrentSlots implements store.BlockStore.
func (s *Store) GetCurrentSlots(ctx context.Context, epoch uint64, poolID [28]byte) (uint64, [32]byte, error) {
	var qty uint64
	var hashHex string
	err := s.db.QueryRowContext(ctx,
		"SELECT slot_qty, hash FROM slots WHERE epoch = ? AND pool_id = ?", epoch, hex.EncodeToString(poolID[:]),
	).Scan(&qty, &hashHex)
	if err == sql.ErrNoRows {
		return 0, [32]byte{}, cerr.New(cerr.InsufficientHistory, "no slot schedule for epoch/pool", nil)
	}
	if err != nil {
		return 0, [32]byte{}, cerr.Wrap(cerr.IoError, err, "read slot schedule")
	}
	hash, err := decodeHash32(hashHex)
	return qty, hash, err
}

// GetPreviousSlots implements store.BlockStore.
func (s *Store) GetPreviousSlots(ctx context.Context, epoch uint64, poolID [28]byte) (string, bool, error) {
	var slots string
	err := s.db.QueryRowContext(ctx,
		"SELECT slots FROM slots WHERE epoch = ? AND pool_id = ?", epoch, hex.EncodeToString(poolID[:]),
	).Scan(&slots)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, cerr.Wrap(cerr.IoError, err, "read previous slot schedule")
	}
	return slots, true, nil
}

func decodeHash32(hexStr string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, cerr.Wrap(cerr.StorageIntegrity, err, "decode stored hash")
	}
	copy(out[:], raw)
	return out, nil
}
