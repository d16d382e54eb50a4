// Package boltstore is the embedded-KV BlockStore backend, built on
// go.etcd.io/bbolt. It mirrors the upstream embedded-database backend's
// bucket/index/rollback design, adapted to bbolt's single-level B+tree
// buckets (bbolt has no native multimap table, so secondary indexes are
// modeled as buckets keyed by index-value||primary-key).
package boltstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/cardano-community/cncli-go/chain"
)

// chainRecord is the on-disk representation of a stored header: every
// BlockHeader field plus the fields the store computes on insert.
type chainRecord struct {
	BlockNumber   uint64
	SlotNumber    uint64
	Hash          [32]byte
	PrevHash      [32]byte
	PoolID        [28]byte
	EtaV          [32]byte
	NodeVKey      []byte
	NodeVRFVKey   []byte
	EtaVRF0       [32]byte
	EtaVRF1       []byte
	LeaderVRF0    []byte
	LeaderVRF1    []byte
	BlockVRF0     []byte
	BlockVRF1     []byte
	BlockSize     uint64
	BlockBodyHash [32]byte
	PoolOpCert    []byte
	ProtoMajor    uint32
	ProtoMinor    uint32
	Unknown0      uint64
	Unknown1      uint64
	Unknown2      []byte
	Orphaned      bool
}

func newChainRecord(h chain.BlockHeader, poolID [28]byte, etaV [32]byte) chainRecord {
	return chainRecord{
		BlockNumber:   h.BlockNumber,
		SlotNumber:    h.SlotNumber,
		Hash:          h.Hash,
		PrevHash:      h.PrevHash,
		PoolID:        poolID,
		EtaV:          etaV,
		NodeVKey:      h.NodeVKey,
		NodeVRFVKey:   h.NodeVRFVKey,
		EtaVRF0:       h.EtaVRF0,
		EtaVRF1:       h.EtaVRF1,
		LeaderVRF0:    h.LeaderVRF0,
		LeaderVRF1:    h.LeaderVRF1,
		BlockVRF0:     h.BlockVRF0,
		BlockVRF1:     h.BlockVRF1,
		BlockSize:     h.BlockSize,
		BlockBodyHash: h.BlockBodyHash,
		PoolOpCert:    h.PoolOpCert,
		ProtoMajor:    h.ProtoMajor,
		ProtoMinor:    h.ProtoMinor,
		Unknown0:      h.Unknown0,
		Unknown1:      h.Unknown1,
		Unknown2:      h.Unknown2,
		Orphaned:      false,
	}
}

func (r chainRecord) toBlock() *chain.Block {
	return &chain.Block{
		BlockNumber: r.BlockNumber,
		SlotNumber:  r.SlotNumber,
		Hash:        r.Hash,
		PrevHash:    r.PrevHash,
		PoolID:      r.PoolID,
		LeaderVRF:   r.LeaderVRF0,
		Orphaned:    r.Orphaned,
	}
}

func encodeRecord(r chainRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (chainRecord, error) {
	var r chainRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return r, err
	}
	return r, nil
}

// slotsRecord is the on-disk representation of a SlotSchedule row.
type slotsRecord struct {
	Epoch    uint64
	PoolID   [28]byte
	Quantity uint64
	Slots    string
	Hash     [32]byte
}

func encodeSlotsRecord(r slotsRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSlotsRecord(data []byte) (slotsRecord, error) {
	var r slotsRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&r); err != nil {
		return r, err
	}
	return r, nil
}

func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func decodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func slotIndexKey(slot uint64, chainKey uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[0:8], slot)
	binary.BigEndian.PutUint64(key[8:16], chainKey)
	return key
}

func hashIndexKey(hash [32]byte, chainKey uint64) []byte {
	key := make([]byte, 40)
	copy(key[0:32], hash[:])
	binary.BigEndian.PutUint64(key[32:40], chainKey)
	return key
}

func slotsKey(epoch uint64, poolID [28]byte) []byte {
	key := make([]byte, 36)
	binary.BigEndian.PutUint64(key[0:8], epoch)
	copy(key[8:36], poolID[:])
	return key
}
