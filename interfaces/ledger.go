package interfaces

import (
	"github.com/web4asset/w4t/types"
)

// Ledger interface defines the read side of the ledger used by services
type Ledger interface {
	// GetBalance returns the balance for the given account, zero if never credited
	GetBalance(account types.AccountID) uint64
	// GetTotalSupply returns the sum of all balances
	GetTotalSupply() uint64
	// AccountCount returns the number of accounts with a stored balance
	AccountCount() int
	// Audit checks that the total supply equals the sum of balances
	Audit() error
	// StateHash hashes every balance and the total supply
	StateHash() [32]byte
}
