package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/holiman/uint256"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
)

var (
	// ErrOverflow is only returned in Checked mode
	ErrOverflow          = errors.New("ledger overflow")
	ErrInvalidAccount    = errors.New("invalid account")
	ErrInvariantViolated = errors.New("total supply does not match sum of balances")
	ErrGenesisApplied    = errors.New("genesis can only be applied to an empty ledger")
)

// Receipt describes the effect of one Credit
type Receipt struct {
	Account     types.AccountID `json:"account"`
	Requested   uint64          `json:"requested"`
	Applied     uint64          `json:"applied"`
	Balance     uint64          `json:"balance"`
	TotalSupply uint64          `json:"total_supply"`
}

// Ledger owns the total supply and every account balance. Reads are served
// from memory; a credit is committed to the store before it becomes visible.
type Ledger struct {
	mu       sync.RWMutex
	mode     ArithmeticMode
	store    store.BalanceStore
	balances map[types.AccountID]uint64
	supply   uint64
}

// Open loads the persisted state and checks the supply invariant before
// handing the ledger out
func Open(balanceStore store.BalanceStore, mode ArithmeticMode) (*Ledger, error) {
	if balanceStore == nil {
		return nil, fmt.Errorf("balance store cannot be nil")
	}
	if mode != Saturating && mode != Checked {
		return nil, fmt.Errorf("unknown arithmetic mode %q", mode)
	}

	balances, supply, err := balanceStore.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	l := &Ledger{
		mode:     mode,
		store:    balanceStore,
		balances: balances,
		supply:   supply,
	}
	if err := l.Audit(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Mode() ArithmeticMode {
	return l.mode
}

// GetBalance returns the balance of account, zero if it was never credited
func (l *Ledger) GetBalance(account types.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

func (l *Ledger) GetTotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Credit raises the balance of account and the total supply by the same
// delta. Either both change or neither does.
func (l *Ledger) Credit(account types.AccountID, amount uint64) (Receipt, error) {
	if err := account.Validate(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[account]
	delta, err := appliedDelta(l.mode, balance, l.supply, amount)
	if err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{
		Account:     account,
		Requested:   amount,
		Applied:     delta,
		Balance:     balance + delta,
		TotalSupply: l.supply + delta,
	}
	if delta == 0 {
		return receipt, nil
	}

	if err := l.store.Commit(account, receipt.Balance, receipt.TotalSupply); err != nil {
		return Receipt{}, fmt.Errorf("failed to commit credit to %s: %w", account, err)
	}
	l.balances[account] = receipt.Balance
	l.supply = receipt.TotalSupply

	return receipt, nil
}

// ApplyGenesis credits the initial allocations. It refuses to run on a ledger
// that already holds supply. The whole set is checked against the arithmetic
// mode first and then written in one batch, so genesis is applied fully or not at all.
func (l *Ledger) ApplyGenesis(allocs []types.GenesisAlloc) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.supply != 0 {
		return ErrGenesisApplied
	}

	balances := make(map[types.AccountID]uint64, len(allocs))
	var supply uint64
	for _, alloc := range allocs {
		if err := alloc.Address.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
		}
		delta, err := appliedDelta(l.mode, balances[alloc.Address], supply, alloc.Amount)
		if err != nil {
			return fmt.Errorf("could not apply genesis allocation for %s: %w", alloc.Address, err)
		}
		if delta == 0 {
			continue
		}
		balances[alloc.Address] += delta
		supply += delta
	}
	if supply == 0 {
		return nil
	}

	if err := l.store.CommitAll(balances, supply); err != nil {
		return fmt.Errorf("failed to commit genesis: %w", err)
	}
	for account, balance := range balances {
		l.balances[account] = balance
	}
	l.supply = supply
	return nil
}

// Audit recomputes the sum of balances in 256-bit arithmetic, so a sum that
// no longer fits in uint64 is reported instead of wrapping
func (l *Ledger) Audit() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := new(uint256.Int)
	for _, balance := range l.balances {
		sum.Add(sum, uint256.NewInt(balance))
	}
	if !sum.IsUint64() || sum.Uint64() != l.supply {
		return fmt.Errorf("%w: supply %d, sum of balances %s", ErrInvariantViolated, l.supply, sum.Dec())
	}
	return nil
}

// Accounts returns every account with a stored balance, sorted by address
func (l *Ledger) Accounts() []types.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sortedAccounts()
}

// AccountCount returns the number of accounts with a stored balance
func (l *Ledger) AccountCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.balances)
}

// StateHash returns the hash of the current state, see ComputeStateHash
func (l *Ledger) StateHash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return ComputeStateHash(l.sortedAccounts(), l.supply)
}

func (l *Ledger) sortedAccounts() []types.Account {
	accounts := make([]types.Account, 0, len(l.balances))
	for addr, balance := range l.balances {
		accounts = append(accounts, types.Account{Address: addr, Balance: balance})
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address < accounts[j].Address
	})
	return accounts
}
