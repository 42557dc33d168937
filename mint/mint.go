package mint

import (
	"errors"

	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/types"
)

var (
	ErrUnauthorized = errors.New("unauthorized: mint requires a signed origin")
	ErrNotMinter    = errors.New("forbidden: caller is not allowed to mint")
)

// Crediter is the part of the ledger the mint transition writes through
type Crediter interface {
	Credit(account types.AccountID, amount uint64) (ledger.Receipt, error)
}

// Transition is the state-transition entry point for minting
type Transition struct {
	ledger    Crediter
	authority Authority
}

// NewTransition creates a mint transition. A nil authority lets any signed caller mint.
func NewTransition(l Crediter, authority Authority) *Transition {
	if authority == nil {
		authority = AnySigned{}
	}
	return &Transition{ledger: l, authority: authority}
}

// Mint credits amount to target on behalf of o. Nothing is written unless o
// is signed and allowed by the authority.
func (t *Transition) Mint(o origin.Origin, target types.AccountID, amount uint64) (ledger.Receipt, error) {
	caller, ok := o.Caller()
	if !ok {
		return ledger.Receipt{}, ErrUnauthorized
	}
	if !t.authority.CanMint(caller) {
		return ledger.Receipt{}, ErrNotMinter
	}
	return t.ledger.Credit(target, amount)
}
