// Package leaderlog computes a pool's leader schedule for one epoch: the
// epoch nonce, the overlay-slot skip and the variant-specific VRF leader
// check, fanned out in parallel across the epoch's slots.
package leaderlog

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/minio/blake2b-simd"
	log "github.com/sirupsen/logrus"

	"github.com/cardano-community/cncli-go/async"
	"github.com/cardano-community/cncli-go/chain"
	"github.com/cardano-community/cncli-go/chain/cerr"
	"github.com/cardano-community/cncli-go/chain/store"
	"github.com/cardano-community/cncli-go/decimal"
	"github.com/cardano-community/cncli-go/epoch"
	"github.com/cardano-community/cncli-go/nonce"
	"github.com/cardano-community/cncli-go/vrf"
)

// Consensus identifies the slot-leadership variant.
type Consensus string

const (
	Praos  Consensus = "praos"
	CPraos Consensus = "cpraos"
	TPraos Consensus = "tpraos"
)

// universalConstantNonce is blake2b-256(be8(1)), sometimes called seedL.
var universalConstantNonce = [32]byte{
	0x12, 0xdd, 0x0a, 0x6a, 0x7d, 0x0e, 0x22, 0x2a, 0x97, 0x92, 0x6d, 0xa0, 0x3a, 0xdb, 0x5a, 0x77,
	0x68, 0xd3, 0x1c, 0xc7, 0xc5, 0xc2, 0xbd, 0x68, 0x28, 0xe1, 0x4a, 0x7d, 0x25, 0xfa, 0x3a, 0x60,
}

// LedgerSet selects which of three adjacent epochs' stake snapshot a
// pool-stake figure was drawn from, the way the upstream node's
// query-stake-snapshot command names them: mark (the snapshot used for
// the next epoch), set (the current snapshot) and go (the previous
// epoch's, now stable). Run targets the next, current or previous epoch
// accordingly. It only changes anything
// when Params.Epoch is nil: an explicit target epoch already pins the
// offset directly.
type LedgerSet string

const (
	Mark  LedgerSet = "mark"
	Set   LedgerSet = "set"
	GoSet LedgerSet = "go"
)

// ParseLedgerSet maps the CLI's prev/current/next vocabulary onto the
// three LedgerSet values. Unlike the original implementation, an
// unrecognized string is rejected rather than silently treated as
// "current": guessing wrong here silently targets the wrong epoch.
func ParseLedgerSet(s string) (LedgerSet, error) {
	switch s {
	case "next":
		return Mark, nil
	case "current":
		return Set, nil
	case "prev":
		return GoSet, nil
	default:
		return "", cerr.New(cerr.BadInput, "unrecognized ledger set: "+s, nil)
	}
}

// Params bundles the inputs calculate_leader_logs takes in the original
// implementation.
type Params struct {
	Clock        *epoch.Clock
	Store        store.BlockStore
	PoolStake    uint64
	ActiveStake  uint64
	D            float64 // decentralization parameter, rounded to thousandths
	ExtraEntropy []byte
	PoolID       [28]byte
	PoolVRFSKey  []byte // 64-byte ECVRF secret key
	Consensus    Consensus
	LedgerSet    LedgerSet // which stake snapshot PoolStake/ActiveStake came from; only matters when Epoch is nil
	Epoch        *uint64   // explicit target epoch, nil uses TipSlot's epoch
	Nonce        *[32]byte
	Now          time.Time
}

// Slot is one assigned slot in the resulting schedule.
type Slot struct {
	No          uint64
	Slot        uint64
	SlotInEpoch uint64
	At          string
}

// Result mirrors the original's LeaderLog JSON report.
type Result struct {
	Epoch            uint64
	EpochNonce       [32]byte
	Consensus        Consensus
	EpochSlots       uint64
	EpochSlotsIdeal  float64
	MaxPerformance   float64
	PoolID           [28]byte
	Sigma            float64
	ActiveStake      uint64
	TotalActiveStake uint64
	D                float64
	F                float64
	AssignedSlots    []Slot
}

var (
	certNatMaxPraos  = decimal.MustFromString("115792089237316195423570985008687907853269984665640564039457584007913129639936")
	certNatMaxTPraos = decimal.MustFromString("13407807929942597099574024998205846127479365820592393377723561443721764030073546976801874298166903427690031858186486050853753882811946569946433649006084096")
)

// IsOverlaySlot reports whether s is a Praos overlay slot within the
// epoch starting at firstSlotOfEpoch, given decentralization parameter d
// quantized to thousandths.
func IsOverlaySlot(firstSlotOfEpoch, s uint64, d float64) bool {
	dq := decimal.FromInt64(roundHalfUp(d * 1000)).Quo(decimal.FromInt64(1000))
	diff := decimal.FromInt64(int64(s - firstSlotOfEpoch))
	diffInc := diff.Add(decimal.FromInt64(1))
	left := dq.Mul(diff).Ceil()
	right := dq.Mul(diffInc).Ceil()
	return left.LessThan(right)
}

func roundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(-v + 0.5)
	}
	return int64(v + 0.5)
}

func beSlotBytes(slot uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], slot)
	return buf[:]
}

func mkInputVRF(slot uint64, eta0 [32]byte) [32]byte {
	h := blake2b.New256()
	h.Write(beSlotBytes(slot))
	h.Write(eta0[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func mkSeedTPraos(slot uint64, eta0 [32]byte) [32]byte {
	seed := mkInputVRF(slot, eta0)
	var out [32]byte
	for i := range out {
		out[i] = universalConstantNonce[i] ^ seed[i]
	}
	return out
}

// vrfLeaderValue hashes the raw VRF proof output with the "L" domain tag
// ("leader value"), interpreting the result as a certified natural number.
func vrfLeaderValue(rawVRF []byte) decimal.Decimal {
	h := blake2b.New256()
	h.Write([]byte{0x4C})
	h.Write(rawVRF)
	return decimal.FromBigIntBytes(h.Sum(nil))
}

// isSlotLeaderPraos implements the praos/cpraos variant: prove over the
// slot seed, hash the proof output with the "L" domain tag, and compare
// its quotient against exp(-sigma*c).
func isSlotLeaderPraos(slot uint64, sigma decimal.Decimal, eta0 [32]byte, skey []byte, certNatMax, cLn decimal.Decimal) (bool, error) {
	seed := mkInputVRF(slot, eta0)
	proof, err := vrf.Prove(skey, seed[:])
	if err != nil {
		return false, cerr.Wrap(cerr.VrfError, err, "vrf prove")
	}
	certNat, err := vrf.ProofToHash(proof[:])
	if err != nil {
		return false, cerr.Wrap(cerr.VrfError, err, "vrf proof to hash")
	}
	certLeaderVRF := vrfLeaderValue(certNat[:])
	return leaderOrdering(sigma, certNatMax, cLn, certLeaderVRF), nil
}

// isSlotLeaderTPraos implements the legacy tpraos variant: the proof
// output itself (no "L" hash) is compared against exp(-sigma*c) with a
// 2^512 ceiling instead of 2^256.
func isSlotLeaderTPraos(slot uint64, sigma decimal.Decimal, eta0 [32]byte, skey []byte, certNatMax, cLn decimal.Decimal) (bool, error) {
	seed := mkSeedTPraos(slot, eta0)
	proof, err := vrf.Prove(skey, seed[:])
	if err != nil {
		return false, cerr.Wrap(cerr.VrfError, err, "vrf prove")
	}
	certNat, err := vrf.ProofToHash(proof[:])
	if err != nil {
		return false, cerr.Wrap(cerr.VrfError, err, "vrf proof to hash")
	}
	certNatDec := decimal.FromBigIntBytes(certNat[:])
	return leaderOrdering(sigma, certNatMax, cLn, certNatDec), nil
}

// leaderOrdering decides slot leadership: the pool leads iff the VRF
// output's quotient q = certNatMax/(certNatMax-certValue) is below
// exp(-sigma*cLn), tested via the certified ExpCmp ternary rather than by
// materializing exp() directly.
func leaderOrdering(sigma, certNatMax, cLn, certValue decimal.Decimal) bool {
	denominator := certNatMax.Sub(certValue)
	recipQ := certNatMax.Quo(denominator)
	x := sigma.Mul(cLn).Neg()
	return decimal.ExpCmp(3, recipQ, x) == decimal.Below
}

// Run executes the full leader-schedule procedure for one epoch.
func Run(ctx context.Context, p Params) (*Result, error) {
	tipSlot, err := p.Store.TipSlot(ctx)
	if err != nil {
		return nil, err
	}

	var targetSlot uint64
	if p.Nonce != nil {
		targetSlot = p.Clock.AbsoluteSlotAt(p.Now.Unix())
	} else {
		targetSlot = tipSlot
	}

	currentEpoch := p.Clock.CurrentEpoch(p.Now.Unix())
	epochOffset := uint64(0)
	if p.Epoch != nil {
		if *p.Epoch > currentEpoch || *p.Epoch <= p.Clock.TransitionEpoch {
			return nil, cerr.New(cerr.BadInput, "requested epoch is out of range", nil)
		}
		epochOffset = currentEpoch - *p.Epoch
	}

	var additionalSlots int64
	if p.Epoch != nil {
		additionalSlots = -int64(p.Clock.Shelley.EpochLengthSlots * epochOffset)
	} else {
		switch p.LedgerSet {
		case Mark:
			additionalSlots = int64(p.Clock.Shelley.EpochLengthSlots)
		case GoSet:
			additionalSlots = -int64(p.Clock.Shelley.EpochLengthSlots)
		default:
			additionalSlots = 0
		}
	}

	targetEpoch, firstSlotOfEpoch := p.Clock.FirstSlotOfEpoch(uint64(int64(targetSlot) + additionalSlots))

	epochNonce, err := resolveNonce(ctx, p, tipSlot, firstSlotOfEpoch)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Epoch:            targetEpoch,
		EpochNonce:       epochNonce,
		Consensus:        p.Consensus,
		PoolID:           p.PoolID,
		ActiveStake:      p.PoolStake,
		TotalActiveStake: p.ActiveStake,
		D:                p.D,
		F:                p.Clock.Shelley.ActiveSlotsCoeff,
	}

	if p.PoolVRFSKey == nil {
		return result, nil
	}

	sigma, err := decimal.FromRat(p.PoolStake, p.ActiveStake)
	if err != nil {
		return nil, cerr.Wrap(cerr.BadInput, err, "sigma = pool_stake / active_stake")
	}
	result.Sigma = sigma.Float64()

	activeSlotsCoeff := decimal.FromFloat64Quantized(p.Clock.Shelley.ActiveSlotsCoeff, 4)
	dMultiplier := decimal.FromInt64(roundHalfUp((1.0 - p.D) * 1000)).Quo(decimal.FromInt64(1000))
	epochSlotsIdeal := sigma.Mul(decimal.FromInt64(int64(p.Clock.Shelley.EpochLengthSlots))).Mul(activeSlotsCoeff).Mul(dMultiplier)
	result.EpochSlotsIdeal = epochSlotsIdeal.Float64()

	var certNatMax decimal.Decimal
	switch p.Consensus {
	case TPraos:
		certNatMax = certNatMaxTPraos
	case Praos, CPraos:
		certNatMax = certNatMaxPraos
	default:
		return nil, cerr.New(cerr.BadInput, "invalid consensus variant", nil)
	}
	cLn := decimal.Ln(decimal.One.Sub(activeSlotsCoeff))

	type scanResult struct {
		slots []Slot
	}

	results, err := async.Scatter(int(p.Clock.Shelley.EpochLengthSlots), func(offset, entries int, mu *sync.RWMutex) (interface{}, error) {
		var found []Slot
		for i := offset; i < offset+entries; i++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			slot := firstSlotOfEpoch + uint64(i)
			if IsOverlaySlot(firstSlotOfEpoch, slot, p.D) {
				continue
			}
			var isLeader bool
			var slotErr error
			switch p.Consensus {
			case TPraos:
				isLeader, slotErr = isSlotLeaderTPraos(slot, sigma, epochNonce, p.PoolVRFSKey, certNatMax, cLn)
			default:
				isLeader, slotErr = isSlotLeaderPraos(slot, sigma, epochNonce, p.PoolVRFSKey, certNatMax, cLn)
			}
			if slotErr != nil {
				log.WithError(slotErr).WithField("slot", slot).Warn("leader check failed for slot, skipping")
				continue
			}
			if isLeader {
				found = append(found, Slot{Slot: slot, SlotInEpoch: slot - firstSlotOfEpoch})
			}
		}
		return scanResult{slots: found}, nil
	})
	if err != nil {
		return nil, err
	}

	var assigned []Slot
	for _, r := range results {
		sr := r.Extent.(scanResult)
		assigned = append(assigned, sr.slots...)
	}
	sort.Slice(assigned, func(i, j int) bool { return assigned[i].Slot < assigned[j].Slot })

	for i := range assigned {
		assigned[i].No = uint64(i + 1)
		assigned[i].At = p.Clock.SlotToTimestamp(assigned[i].Slot)
	}
	result.AssignedSlots = assigned
	result.EpochSlots = uint64(len(assigned))
	if result.EpochSlotsIdeal > 0 {
		result.MaxPerformance = float64(roundHalfUp(float64(result.EpochSlots)/result.EpochSlotsIdeal*10000)) / 100
	}

	slotNumbers := make([]uint64, len(assigned))
	for i, s := range assigned {
		slotNumbers[i] = s.Slot
	}
	slotsText := chain.FormatSlots(slotNumbers)
	slotsHash := chain.HashSlots(slotNumbers)
	if err := p.Store.SaveSlots(ctx, targetEpoch, p.PoolID, uint64(len(assigned)), slotsText, slotsHash); err != nil {
		return nil, err
	}

	return result, nil
}

func resolveNonce(ctx context.Context, p Params, tipSlot, firstSlotOfEpoch uint64) ([32]byte, error) {
	if p.Nonce != nil {
		return *p.Nonce, nil
	}

	tipTime := p.Clock.SlotToTime(tipSlot)
	if p.Now.Sub(tipTime) > 900*time.Second {
		return [32]byte{}, cerr.New(cerr.NotSynced, "db not fully synced", nil)
	}

	firstSlotOfPrevEpoch := firstSlotOfEpoch - p.Clock.Shelley.EpochLengthSlots

	multiplier := int64(3)
	if p.Consensus == CPraos {
		multiplier = 4
	}
	activeSlotsCoeff := decimal.FromFloat64Quantized(p.Clock.Shelley.ActiveSlotsCoeff, 4)
	stabilityWindow := uint64(decimal.FromInt64(multiplier * int64(p.Clock.Byron.ProtocolConstantK)).
		Quo(activeSlotsCoeff).Ceil().Int64())
	stabilityWindowStart := firstSlotOfEpoch - stabilityWindow

	if tipSlot < stabilityWindowStart+60 {
		return [32]byte{}, cerr.New(cerr.InsufficientHistory, "not enough blocks synced to calculate leader schedule yet", nil)
	}

	nc, err := p.Store.EtaVBeforeSlot(ctx, stabilityWindowStart)
	if err != nil {
		return [32]byte{}, err
	}
	nh, err := p.Store.PrevHashBeforeSlot(ctx, firstSlotOfPrevEpoch)
	if err != nil {
		return [32]byte{}, err
	}
	return nonce.Epoch(nc, nh, p.ExtraEntropy), nil
}
