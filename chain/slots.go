package chain

import (
	"strconv"
	"strings"

	"github.com/minio/blake2b-simd"
)

// FormatSlots renders an ascending slot list in the canonical textual
// form the schedule hash is computed over: "[s1,s2,...]", no spaces, and
// "[]" for an empty schedule.
func FormatSlots(slots []uint64) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range slots {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(s, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// HashSlots returns blake2b-256 over the UTF-8 bytes of FormatSlots(slots).
func HashSlots(slots []uint64) [32]byte {
	h := blake2b.New256()
	h.Write([]byte(FormatSlots(slots)))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PoolID derives the 28-byte pool identifier from a node's raw cold
// verification key: blake2b-224(nodeVKey).
func PoolID(nodeVKey []byte) [28]byte {
	h, err := blake2b.New(&blake2b.Config{Size: 28})
	if err != nil {
		panic(err)
	}
	h.Write(nodeVKey)
	var out [28]byte
	copy(out[:], h.Sum(nil))
	return out
}
