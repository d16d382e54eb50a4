// Package pooltool posts stake-pool telemetry (tip stats and leader
// schedule slot counts) to the pooltool.io community API, the way
// cncli's nodeclient reports a running pool's health to the rest of the
// ecosystem.
package pooltool

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cardano-community/cncli-go/chain"
	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

const (
	sendStatsV0URL = "https://api.pooltool.io/v0/sendstats"
	sendStatsV1URL = "https://api.pooltool.io/v1/sendstats"
	sendSlotsURL   = "https://api.pooltool.io/v0/sendslots"
	userAgent      = "cncli-go"
	platform       = "cncli-go"
)

// Client posts to the pooltool API on behalf of one pool.
type Client struct {
	APIKey      string
	PoolID      string
	PoolName    string
	NodeVersion string

	// sendStatsV0URL/sendStatsV1URL/sendSlotsURL default to the live
	// pooltool.io endpoints; tests point them at an httptest.Server.
	sendStatsV0URL string
	sendStatsV1URL string
	sendSlotsURL   string

	http *retryablehttp.Client
}

// NewClient builds a Client with sane retry defaults: pooltool is a
// best-effort telemetry sink, never a dependency the rest of cncli-go
// blocks on, so retries are capped short.
func NewClient(apiKey, poolID, poolName string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.Logger = nil
	return &Client{
		APIKey:         apiKey,
		PoolID:         poolID,
		PoolName:       poolName,
		sendStatsV0URL: sendStatsV0URL,
		sendStatsV1URL: sendStatsV1URL,
		sendSlotsURL:   sendSlotsURL,
		http:           rc,
	}
}

type statsV0 struct {
	APIKey                string `json:"apiKey"`
	PoolID                string `json:"poolId"`
	Data                  dataV0 `json:"data"`
}

type dataV0 struct {
	NodeID                string `json:"nodeId"`
	Version               string `json:"version"`
	At                    string `json:"at"`
	BlockNo               uint64 `json:"blockNo"`
	SlotNo                uint64 `json:"slotNo"`
	BlockHash             string `json:"blockHash"`
	ParentHash            string `json:"parentHash"`
	LeaderVRF             string `json:"leaderVrf"`
	LeaderVRFProof        string `json:"leaderVrfProof"`
	NodeVKey              string `json:"nodeVKey"`
	ProtocolMajorVersion  uint32 `json:"protocolMajorVersion"`
	ProtocolMinorVersion  uint32 `json:"protocolMinorVersion"`
	Platform              string `json:"platform"`
}

type statsV1 struct {
	APIKey string `json:"apiKey"`
	PoolID string `json:"poolId"`
	Data   dataV1 `json:"data"`
}

type dataV1 struct {
	NodeID               string `json:"nodeId"`
	Version              string `json:"version"`
	At                   string `json:"at"`
	BlockNo              uint64 `json:"blockNo"`
	SlotNo               uint64 `json:"slotNo"`
	BlockHash            string `json:"blockHash"`
	ParentHash           string `json:"parentHash"`
	LeaderVRF            string `json:"leaderVrf"`
	BlockVRF             string `json:"blockVrf"`
	BlockVRFProof        string `json:"blockVrfProof"`
	NodeVKey             string `json:"nodeVKey"`
	ProtocolMajorVersion uint32 `json:"protocolMajorVersion"`
	ProtocolMinorVersion uint32 `json:"protocolMinorVersion"`
	Platform             string `json:"platform"`
}

// SendTip reports a newly-adopted tip header to pooltool. It picks the
// v1 payload (which carries the block VRF) whenever the header has one,
// falling back to the v0 shape for headers minted before that field
// existed on the wire.
func (c *Client) SendTip(ctx context.Context, header chain.BlockHeader) error {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	var url string
	var body interface{}
	if len(header.BlockVRF0) == 0 {
		body = statsV0{
			APIKey: c.APIKey,
			PoolID: c.PoolID,
			Data: dataV0{
				Version:              c.NodeVersion,
				At:                   now,
				BlockNo:              header.BlockNumber,
				SlotNo:               header.SlotNumber,
				BlockHash:            hex.EncodeToString(header.Hash[:]),
				ParentHash:           hex.EncodeToString(header.PrevHash[:]),
				LeaderVRF:            hex.EncodeToString(header.LeaderVRF0),
				LeaderVRFProof:       hex.EncodeToString(header.LeaderVRF1),
				NodeVKey:             hex.EncodeToString(header.NodeVKey),
				ProtocolMajorVersion: header.ProtoMajor,
				ProtocolMinorVersion: header.ProtoMinor,
				Platform:             platform,
			},
		}
		url = c.sendStatsV0URL
	} else {
		body = statsV1{
			APIKey: c.APIKey,
			PoolID: c.PoolID,
			Data: dataV1{
				Version:              c.NodeVersion,
				At:                   now,
				BlockNo:              header.BlockNumber,
				SlotNo:               header.SlotNumber,
				BlockHash:            hex.EncodeToString(header.Hash[:]),
				ParentHash:           hex.EncodeToString(header.PrevHash[:]),
				LeaderVRF:            hex.EncodeToString(header.LeaderVRF0),
				BlockVRF:             hex.EncodeToString(header.BlockVRF0),
				BlockVRFProof:        hex.EncodeToString(header.BlockVRF1),
				NodeVKey:             hex.EncodeToString(header.NodeVKey),
				ProtocolMajorVersion: header.ProtoMajor,
				ProtocolMinorVersion: header.ProtoMinor,
				Platform:             platform,
			},
		}
		url = c.sendStatsV1URL
	}
	return c.post(ctx, url, body)
}

type sendSlotsRequest struct {
	APIKey       string `json:"apiKey"`
	PoolID       string `json:"poolId"`
	Epoch        uint64 `json:"epoch"`
	SlotQty      uint64 `json:"slotQty"`
	Hash         string `json:"hash"`
	OverrideTime string `json:"overrideTime,omitempty"`
	PrevSlots    string `json:"prevSlots,omitempty"`
}

// SendSlots reports how many slots a pool is assigned in epoch, plus the
// canonical content hash of its schedule. overrideTime and prevSlots are
// both optional: overrideTime backfills a past epoch's "as of" time,
// prevSlots lets pooltool detect a schedule that changed since the last
// report.
func (c *Client) SendSlots(ctx context.Context, epoch, slotQty uint64, hash, overrideTime, prevSlots string) error {
	body := sendSlotsRequest{
		APIKey:       c.APIKey,
		PoolID:       c.PoolID,
		Epoch:        epoch,
		SlotQty:      slotQty,
		Hash:         hash,
		OverrideTime: overrideTime,
		PrevSlots:    prevSlots,
	}
	return c.post(ctx, c.sendSlotsURL, body)
}

func (c *Client) post(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("pooltool: marshal request: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("pooltool: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithField("pool", c.PoolName).Warn("pooltool request failed")
		return fmt.Errorf("pooltool: request failed: %w", err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"pool":   c.PoolName,
		"url":    url,
		"status": resp.StatusCode,
	}).Info("pooltool response")
	return nil
}
