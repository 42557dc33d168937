package staking

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
	"github.com/web4asset/w4t/types"
)

var ErrNoValidators = errors.New("no validators")

// StakeWeightedScheduler picks the author of each slot with probability
// proportional to stake. The choice is deterministic for a given seed.
type StakeWeightedScheduler struct {
	stakes *StakeTable
	seed   []byte
}

func NewStakeWeightedScheduler(stakes *StakeTable, seed []byte) *StakeWeightedScheduler {
	return &StakeWeightedScheduler{stakes: stakes, seed: seed}
}

// LeaderAt returns the author for slot
func (sws *StakeWeightedScheduler) LeaderAt(slot uint64) (types.AccountID, error) {
	validators := sws.stakes.Validators()
	if len(validators) == 0 {
		return "", ErrNoValidators
	}

	total := new(uint256.Int)
	for _, v := range validators {
		total.Add(total, uint256.NewInt(v.Stake))
	}

	slotBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(slotBytes, slot)
	h := sha256.New()
	h.Write(sws.seed)
	h.Write(slotBytes)
	digest := h.Sum(nil)

	threshold := new(uint256.Int).SetBytes(digest)
	threshold.Mod(threshold, total)

	cumulative := new(uint256.Int)
	for _, v := range validators {
		cumulative.Add(cumulative, uint256.NewInt(v.Stake))
		if cumulative.Gt(threshold) {
			return v.Address, nil
		}
	}
	// unreachable while threshold < total
	return validators[len(validators)-1].Address, nil
}
