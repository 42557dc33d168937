package mint

import (
	"sort"
	"sync"

	"github.com/web4asset/w4t/types"
)

// Authority decides whether a verified caller may mint
type Authority interface {
	CanMint(caller types.AccountID) bool
}

// AnySigned lets every verified caller mint to any account
type AnySigned struct{}

func (AnySigned) CanMint(types.AccountID) bool {
	return true
}

// Allowlist restricts minting to a set of accounts, typically the reward
// feed's system account plus operator keys
type Allowlist struct {
	mu      sync.RWMutex
	minters map[types.AccountID]bool
}

func NewAllowlist(minters ...types.AccountID) *Allowlist {
	a := &Allowlist{minters: make(map[types.AccountID]bool, len(minters))}
	for _, m := range minters {
		a.minters[m] = true
	}
	return a
}

func (a *Allowlist) CanMint(caller types.AccountID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.minters[caller]
}

func (a *Allowlist) Add(minter types.AccountID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minters[minter] = true
}

func (a *Allowlist) Remove(minter types.AccountID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.minters, minter)
}

// List returns the allowed minters sorted
func (a *Allowlist) List() []types.AccountID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]types.AccountID, 0, len(a.minters))
	for m := range a.minters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
