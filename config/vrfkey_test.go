package config

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func writeVRFKeyFixture(t *testing.T, keyType string, key []byte) string {
	t.Helper()
	var cborHex string
	switch {
	case len(key) <= 23:
		cborHex = hex.EncodeToString(append([]byte{0x40 | byte(len(key))}, key...))
	case len(key) <= 255:
		cborHex = hex.EncodeToString(append([]byte{0x58, byte(len(key))}, key...))
	default:
		t.Fatalf("fixture helper does not support keys over 255 bytes")
	}
	contents, err := json.Marshal(vrfKeyFile{Type: keyType, CBORHex: cborHex})
	require.NoError(t, err)
	return writeFixture(t, "vrf.skey", string(contents))
}

func TestLoadVRFKeySigningKey(t *testing.T) {
	key := make([]byte, 64)
	for i := range key {
		key[i] = byte(i)
	}
	path := writeVRFKeyFixture(t, "VrfSigningKey_PraosVRF", key)

	got, err := LoadVRFKey(path)
	require.NoError(t, err)
	require.Equal(t, "VrfSigningKey_PraosVRF", got.KeyType)
	require.Equal(t, key, got.Key)
}

func TestLoadVRFKeyVerificationKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	path := writeVRFKeyFixture(t, "VrfVerificationKey_PraosVRF", key)

	got, err := LoadVRFKey(path)
	require.NoError(t, err)
	require.Equal(t, "VrfVerificationKey_PraosVRF", got.KeyType)
	require.Equal(t, key, got.Key)
}

func TestLoadVRFKeyBadCBORHex(t *testing.T) {
	contents, err := json.Marshal(vrfKeyFile{Type: "VrfSigningKey_PraosVRF", CBORHex: "zz"})
	require.NoError(t, err)
	path := writeFixture(t, "vrf.skey", string(contents))

	_, err = LoadVRFKey(path)
	require.Error(t, err)
}

func TestLoadVRFKeyMissingFile(t *testing.T) {
	_, err := LoadVRFKey("/nonexistent/vrf.skey")
	require.Error(t, err)
}
