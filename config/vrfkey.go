package config

import (
	"encoding/hex"
	"fmt"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

// VRFKey is a decoded cardano-cli VRF key file: the raw key material
// plus the type tag the file declares it as, so callers can reject a
// verification key handed in where a signing key belongs (and vice
// versa) before it reaches the VRF primitives.
type VRFKey struct {
	KeyType string
	Key     []byte
}

type vrfKeyFile struct {
	Type    string `json:"type"`
	CBORHex string `json:"cborHex"`
}

// LoadVRFKey reads a cardano-cli-style VRF key file (vrf.skey or
// vrf.vkey): a JSON envelope whose cborHex field is the raw key bytes
// wrapped in a CBOR byte string.
func LoadVRFKey(path string) (VRFKey, error) {
	var raw vrfKeyFile
	if err := readJSONFile(path, &raw); err != nil {
		return VRFKey{}, err
	}
	key, err := decodeCBORByteString(raw.CBORHex)
	if err != nil {
		return VRFKey{}, cerr.Wrap(cerr.BadInput, err, "decode cborHex in "+path)
	}
	return VRFKey{KeyType: raw.Type, Key: key}, nil
}

// decodeCBORByteString unwraps a CBOR major-type-2 (byte string)
// definite-length value. cardano-cli key files only ever use this one
// CBOR shape for their key material, so this only handles enough of the
// CBOR major-type-2 header to read it: a length folded into the
// initial byte (0x40-0x57), or a 1-byte (0x58) or 2-byte (0x59) length
// that follows it.
func decodeCBORByteString(cborHex string) ([]byte, error) {
	raw, err := hex.DecodeString(cborHex)
	if err != nil {
		return nil, fmt.Errorf("cborHex is not valid hex: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("cborHex is empty")
	}
	head := raw[0]
	if head&0xe0 != 0x40 {
		return nil, fmt.Errorf("cborHex is not a CBOR byte string (head 0x%x)", head)
	}
	switch {
	case head <= 0x57:
		n := int(head & 0x1f)
		if len(raw) < 1+n {
			return nil, fmt.Errorf("cborHex truncated")
		}
		return raw[1 : 1+n], nil
	case head == 0x58:
		if len(raw) < 2 {
			return nil, fmt.Errorf("cborHex truncated")
		}
		n := int(raw[1])
		if len(raw) < 2+n {
			return nil, fmt.Errorf("cborHex truncated")
		}
		return raw[2 : 2+n], nil
	case head == 0x59:
		if len(raw) < 3 {
			return nil, fmt.Errorf("cborHex truncated")
		}
		n := int(raw[1])<<8 | int(raw[2])
		if len(raw) < 3+n {
			return nil, fmt.Errorf("cborHex truncated")
		}
		return raw[3 : 3+n], nil
	default:
		return nil, fmt.Errorf("unsupported CBOR byte-string length encoding (head 0x%x)", head)
	}
}
