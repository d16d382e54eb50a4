package boltstore

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/cardano-community/cncli-go/chain"
	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/nonce"
)

const dbVersion = 1

var (
	metaBucket            = []byte("meta")
	chainBucket           = []byte("chain")
	chainSlotIndexBucket  = []byte("chain_slot_index")
	chainHashIndexBucket  = []byte("chain_hash_index")
	slotsBucket           = []byte("slots")
	versionKey            = []byte("version")
)

// Store is the bbolt-backed BlockStore implementation.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a bbolt database at path and runs any pending
// migration.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, cerr.Wrap(cerr.IoError, err, "open bolt database")
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		current := uint16(0)
		if v := meta.Get(versionKey); v != nil {
			current = uint16(decodeUint64(append(make([]byte, 6), v...)))
		}
		if current >= dbVersion {
			return nil
		}
		for _, name := range [][]byte{chainBucket, chainSlotIndexBucket, chainHashIndexBucket, slotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		buf := encodeUint64(uint64(dbVersion))
		return meta.Put(versionKey, buf[6:])
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying bbolt handle so callers can wire
// bucket-level Prometheus metrics (see the metrics package) without this
// package taking on a Prometheus dependency itself.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// SaveBlocks implements store.BlockStore.
func (s *Store) SaveBlocks(ctx context.Context, pending []chain.BlockHeader, genesisHash [32]byte) error {
	if len(pending) == 0 {
		return nil
	}
	firstPendingBlockNumber := pending[0].BlockNumber

	return s.db.Update(func(tx *bolt.Tx) error {
		chainBkt := tx.Bucket(chainBucket)
		slotIdx := tx.Bucket(chainSlotIndexBucket)
		hashIdx := tx.Bucket(chainHashIndexBucket)

		prevEtaV := genesisHash
		type orphanEntry struct {
			key []byte
			rec chainRecord
		}
		var toOrphan []orphanEntry

		c := chainBkt.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			rec, err := decodeRecord(v)
			if err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "decode chain record")
			}
			if rec.Orphaned {
				continue
			}
			if rec.BlockNumber >= firstPendingBlockNumber {
				keyCopy := append([]byte(nil), k...)
				toOrphan = append(toOrphan, orphanEntry{key: keyCopy, rec: rec})
				continue
			}
			prevEtaV = rec.EtaV
			break
		}

		for _, entry := range toOrphan {
			entry.rec.Orphaned = true
			data, err := encodeRecord(entry.rec)
			if err != nil {
				return err
			}
			if err := chainBkt.Put(entry.key, data); err != nil {
				return err
			}
		}

		for _, h := range pending {
			poolID := chain.PoolID(h.NodeVKey)
			etaV := nonce.Rolling(prevEtaV, h.EtaVRF0)
			rec := newChainRecord(h, poolID, etaV)

			seq, err := chainBkt.NextSequence()
			if err != nil {
				return err
			}
			key := encodeUint64(seq)
			data, err := encodeRecord(rec)
			if err != nil {
				return err
			}
			if err := chainBkt.Put(key, data); err != nil {
				return err
			}
			if err := slotIdx.Put(slotIndexKey(h.SlotNumber, seq), key); err != nil {
				return err
			}
			if err := hashIdx.Put(hashIndexKey(h.Hash, seq), key); err != nil {
				return err
			}
			prevEtaV = etaV
		}
		return nil
	})
}

// LoadRecentIntersectPoints implements store.BlockStore.
func (s *Store) LoadRecentIntersectPoints(ctx context.Context) ([]chain.IntersectPoint, error) {
	var points []chain.IntersectPoint
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(chainBucket).Cursor()
		for k, v := c.Last(); k != nil && len(points) < chain.MaxIntersectPoints; k, v = c.Prev() {
			rec, err := decodeRecord(v)
			if err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "decode chain record")
			}
			if rec.Orphaned {
				continue
			}
			points = append(points, chain.IntersectPoint{SlotNumber: rec.SlotNumber, Hash: rec.Hash})
		}
		return nil
	})
	return points, err
}

// FindBlockByHash implements store.BlockStore.
func (s *Store) FindBlockByHash(ctx context.Context, hashPrefix string) (*chain.Block, error) {
	var found *chain.Block
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(chainBucket).Cursor()
		var orphanedMatch *chain.Block
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			rec, err := decodeRecord(v)
			if err != nil {
				return cerr.Wrap(cerr.StorageIntegrity, err, "decode chain record")
			}
			hexHash := hexEncode(rec.Hash[:])
			if !hasPrefix(hexHash, hashPrefix) {
				continue
			}
			block := rec.toBlock()
			if !rec.Orphaned {
				found = block
				return nil
			}
			if orphanedMatch == nil {
				orphanedMatch = block
			}
		}
		found = orphanedMatch
		return nil
	})
	return found, err
}

// TipSlot implements store.BlockStore.
func (s *Store) TipSlot(ctx context.Context) (uint64, error) {
	var tip uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(chainSlotIndexBucket).Cursor()
		k, _ := c.Last()
		if k == nil {
			return nil
		}
		tip = decodeUint64(k[0:8])
		return nil
	})
	return tip, err
}

// EtaVBeforeSlot implements store.BlockStore.
func (s *Store) EtaVBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	var out [32]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		rec, err := s.latestCanonicalBeforeSlot(tx, slot)
		if err != nil {
			return err
		}
		out = rec.EtaV
		return nil
	})
	return out, err
}

// PrevHashBeforeSlot implements store.BlockStore.
func (s *Store) PrevHashBeforeSlot(ctx context.Context, slot uint64) ([32]byte, error) {
	var out [32]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		rec, err := s.latestCanonicalBeforeSlot(tx, slot)
		if err != nil {
			return err
		}
		out = rec.PrevHash
		return nil
	})
	return out, err
}

func (s *Store) latestCanonicalBeforeSlot(tx *bolt.Tx, slot uint64) (chainRecord, error) {
	slotIdx := tx.Bucket(chainSlotIndexBucket)
	chainBkt := tx.Bucket(chainBucket)

	c := slotIdx.Cursor()
	upper := encodeUint64(slot)
	k, _ := c.Seek(upper)
	if k == nil {
		k, _ = c.Last()
	} else {
		k, _ = c.Prev()
	}
	for k != nil {
		if decodeUint64(k[0:8]) < slot {
			chainKey := k[8:16]
			v := chainBkt.Get(chainKey)
			if v != nil {
				rec, err := decodeRecord(v)
				if err != nil {
					return chainRecord{}, cerr.Wrap(cerr.StorageIntegrity, err, "decode chain record")
				}
				if !rec.Orphaned {
					return rec, nil
				}
			}
		}
		k, _ = c.Prev()
	}
	return chainRecord{}, cerr.New(cerr.InsufficientHistory, "no canonical header before requested slot", nil)
}

// SaveSlots implements store.BlockStore.
func (s *Store) SaveSlots(ctx context.Context, epoch uint64, poolID [28]byte, qty uint64, slots string, hash [32]byte) error {
	key := slotsKey(epoch, poolID)
	rec := slotsRecord{Epoch: epoch, PoolID: poolID, Quantity: qty, Slots: slots, Hash: hash}
	data, err := encodeSlotsRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(slotsBucket).Put(key, data)
	})
}

// GetCurrentSlots implements store.BlockStore.
func (s *Store) GetCurrentSlots(ctx context.Context, epoch uint64, poolID [28]byte) (uint64, [32]byte, error) {
	var qty uint64
	var hash [32]byte
	key := slotsKey(epoch, poolID)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(slotsBucket).Get(key)
		if v == nil {
			return cerr.New(cerr.InsufficientHistory, "no slot schedule for epoch/pool", nil)
		}
		rec, err := decodeSlotsRecord(v)
		if err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "decode slots record")
		}
		qty = rec.Quantity
		hash = rec.Hash
		return nil
	})
	return qty, hash, err
}

// GetPreviousSlots implements store.BlockStore.
func (s *Store) GetPreviousSlots(ctx context.Context, epoch uint64, poolID [28]byte) (string, bool, error) {
	var slots string
	found := false
	key := slotsKey(epoch, poolID)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(slotsBucket).Get(key)
		if v == nil {
			return nil
		}
		rec, err := decodeSlotsRecord(v)
		if err != nil {
			return cerr.Wrap(cerr.StorageIntegrity, err, "decode slots record")
		}
		slots = rec.Slots
		found = true
		return nil
	})
	return slots, found, err
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}

func hasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}
