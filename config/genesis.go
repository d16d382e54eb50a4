// Package config loads the JSON genesis files and pool-tool
// configuration cncli-go's CLI subcommands read from disk.
package config

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/epoch"
)

type byronGenesisFile struct {
	StartTime        uint64 `json:"startTime"`
	ProtocolConsts   struct {
		K uint64 `json:"k"`
	} `json:"protocolConsts"`
	BlockVersionData struct {
		SlotDuration string `json:"slotDuration"`
	} `json:"blockVersionData"`
}

type shelleyGenesisFile struct {
	ActiveSlotsCoeff float64 `json:"activeSlotsCoeff"`
	NetworkMagic     uint32  `json:"networkMagic"`
	SlotLength       uint64  `json:"slotLength"`
	EpochLength      uint64  `json:"epochLength"`
}

// LoadByronGenesis reads a byron-era genesis JSON file, following the
// network node's own genesis file shape.
func LoadByronGenesis(path string) (epoch.ByronGenesis, error) {
	var raw byronGenesisFile
	if err := readJSONFile(path, &raw); err != nil {
		return epoch.ByronGenesis{}, err
	}
	slotDuration, err := strconv.ParseUint(raw.BlockVersionData.SlotDuration, 10, 64)
	if err != nil {
		return epoch.ByronGenesis{}, cerr.Wrap(cerr.BadInput, err, "parse byron slotDuration")
	}
	return epoch.ByronGenesis{
		StartTime:         raw.StartTime,
		ProtocolConstantK: raw.ProtocolConsts.K,
		SlotDurationMs:    slotDuration,
	}, nil
}

// LoadShelleyGenesis reads a shelley-era genesis JSON file.
func LoadShelleyGenesis(path string) (epoch.ShelleyGenesis, error) {
	var raw shelleyGenesisFile
	if err := readJSONFile(path, &raw); err != nil {
		return epoch.ShelleyGenesis{}, err
	}
	return epoch.ShelleyGenesis{
		ActiveSlotsCoeff: raw.ActiveSlotsCoeff,
		NetworkMagic:     raw.NetworkMagic,
		SlotLengthSec:    raw.SlotLength,
		EpochLengthSlots: raw.EpochLength,
	}, nil
}

func readJSONFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cerr.New(cerr.PathNotFound, "file not found: "+path, err)
		}
		return cerr.Wrap(cerr.IoError, err, "open "+path)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return cerr.Wrap(cerr.BadInput, err, "parse JSON in "+path)
	}
	return nil
}
