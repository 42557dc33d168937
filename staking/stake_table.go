package staking

import (
	"errors"
	"sort"
	"sync"

	"github.com/holiman/uint256"
	"github.com/web4asset/w4t/types"
)

var ErrZeroStake = errors.New("stake amount must be positive")

// Validator is a block author and its stake
type Validator struct {
	Address types.AccountID `json:"address" yaml:"address"`
	Stake   uint64          `json:"stake" yaml:"stake"`
}

// StakeTable is an in-memory registry of validator stakes
type StakeTable struct {
	mu     sync.RWMutex
	stakes map[types.AccountID]uint64
}

func NewStakeTable(validators ...Validator) (*StakeTable, error) {
	st := &StakeTable{stakes: make(map[types.AccountID]uint64)}
	for _, v := range validators {
		if err := st.Set(v.Address, v.Stake); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Set registers validator with stake, replacing any previous stake
func (st *StakeTable) Set(validator types.AccountID, stake uint64) error {
	if err := validator.Validate(); err != nil {
		return err
	}
	if stake == 0 {
		return ErrZeroStake
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stakes[validator] = stake
	return nil
}

func (st *StakeTable) Remove(validator types.AccountID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.stakes, validator)
}

func (st *StakeTable) Stake(validator types.AccountID) uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.stakes[validator]
}

// TotalStake sums all stakes without overflowing
func (st *StakeTable) TotalStake() *uint256.Int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	total := new(uint256.Int)
	for _, stake := range st.stakes {
		total.Add(total, uint256.NewInt(stake))
	}
	return total
}

// Validators returns all validators sorted by address
func (st *StakeTable) Validators() []Validator {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Validator, 0, len(st.stakes))
	for addr, stake := range st.stakes {
		out = append(out, Validator{Address: addr, Stake: stake})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address < out[j].Address
	})
	return out
}

func (st *StakeTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.stakes)
}
