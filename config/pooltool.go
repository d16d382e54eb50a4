package config

import (
	"encoding/json"
	"os"

	"github.com/cardano-community/cncli-go/chain/cerr"
)

// PoolToolConfig is the shape of the pool-tool JSON config file read by
// the sendslots/sendtip subcommands: one API key shared across every
// pool the operator runs.
type PoolToolConfig struct {
	APIKey string          `json:"apiKey"`
	Pools  []PoolToolEntry `json:"pools"`
}

// PoolToolEntry identifies one pool and its node's Host and Port. The
// sendtip and sendslots subcommands read only Name and PoolID; sendtip
// reports the local database's tip and does not contact Host:Port.
type PoolToolEntry struct {
	Name   string `json:"name"`
	PoolID string `json:"poolId"`
	Host   string `json:"host"`
	Port   uint16 `json:"port"`
}

// LoadPoolToolConfig reads the pool-tool config file from path.
func LoadPoolToolConfig(path string) (PoolToolConfig, error) {
	var cfg PoolToolConfig
	if err := readJSONFile(path, &cfg); err != nil {
		return PoolToolConfig{}, err
	}
	return cfg, nil
}

// ShelleyTransitionEpochOverride returns the SHELLEY_TRANS_EPOCH env var
// as an override epoch, or ok=false when it is unset.
func ShelleyTransitionEpochOverride() (epoch uint64, ok bool, err error) {
	raw, present := os.LookupEnv("SHELLEY_TRANS_EPOCH")
	if !present || raw == "" {
		return 0, false, nil
	}
	var v uint64
	if decErr := json.Unmarshal([]byte(raw), &v); decErr != nil {
		return 0, false, cerr.Wrap(cerr.BadInput, decErr, "parse SHELLEY_TRANS_EPOCH")
	}
	return v, true, nil
}

// OverrideTime returns the OVERRIDE_TIME env var (an RFC3339 timestamp
// pool-tool accepts in place of "now" for sendslots, used when backfilling
// a past epoch's schedule), or ok=false when it is unset.
func OverrideTime() (value string, ok bool) {
	raw, present := os.LookupEnv("OVERRIDE_TIME")
	if !present || raw == "" {
		return "", false
	}
	return raw, true
}
