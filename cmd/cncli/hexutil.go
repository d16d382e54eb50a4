package main

import (
	"encoding/hex"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, cerr.Wrap(cerr.BadInput, err, "decode hex hash")
	}
	if len(raw) != 32 {
		return out, cerr.New(cerr.BadInput, "hash must be 32 bytes", nil)
	}
	copy(out[:], raw)
	return out, nil
}

func decodePoolID(s string) ([28]byte, error) {
	var out [28]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, cerr.Wrap(cerr.BadInput, err, "decode hex pool id")
	}
	if len(raw) != 28 {
		return out, cerr.New(cerr.BadInput, "pool id must be 28 bytes", nil)
	}
	copy(out[:], raw)
	return out, nil
}

func decodeHexBytes(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, cerr.Wrap(cerr.BadInput, err, "decode hex string")
	}
	return raw, nil
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
