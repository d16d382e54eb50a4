package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardano-community/cncli-go/chain"
)

func setupStore(t testing.TB) *Store {
	path := filepath.Join(t.TempDir(), "chain.db")
	s, err := Open(path)
	require.NoError(t, err, "failed to open bolt store")
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func fillByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func fillArray32(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func header(blockNumber, slotNumber uint64, hashByte, prevHashByte byte) chain.BlockHeader {
	return chain.BlockHeader{
		BlockNumber:   blockNumber,
		SlotNumber:    slotNumber,
		Hash:          fillArray32(hashByte),
		PrevHash:      fillArray32(prevHashByte),
		NodeVKey:      fillByte(0x11, 32),
		NodeVRFVKey:   fillByte(0x22, 32),
		EtaVRF0:       fillArray32(hashByte + 1),
		EtaVRF1:       fillByte(0x33, 64),
		LeaderVRF0:    fillByte(0x44, 32),
		LeaderVRF1:    fillByte(0x55, 64),
		BlockVRF0:     fillByte(0x66, 32),
		BlockVRF1:     fillByte(0x77, 64),
		BlockSize:     1024,
		BlockBodyHash: fillArray32(0x88),
		PoolOpCert:    fillByte(0x99, 8),
		ProtoMajor:    8,
		ProtoMinor:    0,
	}
}

func TestSaveAndLoadIntersectPoints(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	genesis := fillArray32(0x00)

	headers := []chain.BlockHeader{
		header(1, 10, 0x01, 0x00),
		header(2, 20, 0x02, 0x01),
		header(3, 30, 0x03, 0x02),
	}
	require.NoError(t, s.SaveBlocks(ctx, headers, genesis))

	tip, err := s.TipSlot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(30), tip)

	points, err := s.LoadRecentIntersectPoints(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, uint64(30), points[0].SlotNumber)
	require.Equal(t, uint64(10), points[2].SlotNumber)
}

func TestFindBlockByHash(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	genesis := fillArray32(0x00)

	headers := []chain.BlockHeader{
		header(1, 10, 0xaa, 0x00),
		header(2, 20, 0xbb, 0xaa),
	}
	require.NoError(t, s.SaveBlocks(ctx, headers, genesis))

	block, err := s.FindBlockByHash(ctx, "bbbb")
	require.NoError(t, err)
	require.NotNil(t, block)
	require.Equal(t, uint64(20), block.SlotNumber)
	require.False(t, block.Orphaned)

	missing, err := s.FindBlockByHash(ctx, "deadbeef")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestEtaVAndPrevHashBeforeSlot(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	genesis := fillArray32(0x00)

	headers := []chain.BlockHeader{
		header(1, 10, 0x01, 0x00),
		header(2, 20, 0x02, 0x01),
		header(3, 30, 0x03, 0x02),
	}
	require.NoError(t, s.SaveBlocks(ctx, headers, genesis))

	prevHash, err := s.PrevHashBeforeSlot(ctx, 25)
	require.NoError(t, err)
	require.Equal(t, headers[1].PrevHash, prevHash)

	_, err = s.EtaVBeforeSlot(ctx, 25)
	require.NoError(t, err)

	_, err = s.PrevHashBeforeSlot(ctx, 5)
	require.Error(t, err)
}

func TestSaveBlocksRollback(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	genesis := fillArray32(0x00)

	first := []chain.BlockHeader{
		header(1, 10, 0x01, 0x00),
		header(2, 20, 0x02, 0x01),
		header(3, 30, 0x03, 0x02),
	}
	require.NoError(t, s.SaveBlocks(ctx, first, genesis))

	fork := []chain.BlockHeader{
		header(2, 21, 0xf2, 0x01),
		header(3, 31, 0xf3, 0xf2),
	}
	require.NoError(t, s.SaveBlocks(ctx, fork, genesis))

	tip, err := s.TipSlot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(31), tip)

	orphaned, err := s.FindBlockByHash(ctx, "02")
	require.NoError(t, err)
	require.NotNil(t, orphaned)
	require.True(t, orphaned.Orphaned)

	canonical, err := s.FindBlockByHash(ctx, "f2")
	require.NoError(t, err)
	require.NotNil(t, canonical)
	require.False(t, canonical.Orphaned)
}

func TestSlotSchedulePersistence(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	poolID := chain.PoolID([]byte("pool-a"))

	slots := chain.FormatSlots([]uint64{100, 200, 300})
	hash := chain.HashSlots([]uint64{100, 200, 300})
	require.NoError(t, s.SaveSlots(ctx, 50, poolID, 3, slots, hash))

	qty, gotHash, err := s.GetCurrentSlots(ctx, 50, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(3), qty)
	require.Equal(t, hash, gotHash)

	gotSlots, ok, err := s.GetPreviousSlots(ctx, 50, poolID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, slots, gotSlots)

	_, ok, err = s.GetPreviousSlots(ctx, 51, poolID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SaveSlots(ctx, 50, poolID, 4, "[100,200,300,400]", hash))
	qty, _, err = s.GetCurrentSlots(ctx, 50, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(4), qty)
}
