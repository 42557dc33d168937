package staking

import (
	"math"

	"github.com/holiman/uint256"
)

// DefaultBlockReward is the fixed per-block reward, 10 tokens at 9 decimals
const DefaultBlockReward uint64 = 10 * 1_000_000_000

const basisPoints = 10_000

// RewardPolicy decides how much is minted for the block finalized at slot
type RewardPolicy interface {
	Reward(slot uint64) uint64
}

// FixedReward pays the same amount for every block
type FixedReward struct {
	Amount uint64
}

func (p FixedReward) Reward(uint64) uint64 {
	return p.Amount
}

// HalvingReward halves the reward every Interval slots. A zero interval never halves.
type HalvingReward struct {
	Initial  uint64
	Interval uint64
}

func (p HalvingReward) Reward(slot uint64) uint64 {
	if p.Interval == 0 {
		return p.Initial
	}
	halvings := slot / p.Interval
	if halvings >= 64 {
		return 0
	}
	return p.Initial >> halvings
}

// StakeSource reports the total stake rewards are computed from
type StakeSource interface {
	TotalStake() *uint256.Int
}

// StakeReward pays an annual rate on the total stake, split over PeriodsPerYear blocks.
// reward = totalStake * RateBps / 10000 / PeriodsPerYear, clamped to uint64.
type StakeReward struct {
	Stakes         StakeSource
	RateBps        uint64
	PeriodsPerYear uint64
}

func (p StakeReward) Reward(uint64) uint64 {
	if p.Stakes == nil || p.PeriodsPerYear == 0 {
		return 0
	}
	reward := new(uint256.Int).Mul(p.Stakes.TotalStake(), uint256.NewInt(p.RateBps))
	reward.Div(reward, uint256.NewInt(basisPoints))
	reward.Div(reward, uint256.NewInt(p.PeriodsPerYear))
	if !reward.IsUint64() {
		return math.MaxUint64
	}
	return reward.Uint64()
}
