package types

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

var ErrEmptyAccountID = errors.New("account id cannot be empty")

// AccountID identifies a ledger account. It is the base58 encoding of the
// account's ed25519 public key.
type AccountID string

func AccountIDFromPublicKey(pub ed25519.PublicKey) AccountID {
	return AccountID(base58.Encode(pub))
}

func (a AccountID) String() string {
	return string(a)
}

func (a AccountID) Validate() error {
	if a == "" {
		return ErrEmptyAccountID
	}
	return nil
}

// PublicKey decodes the ed25519 public key the id was derived from
func (a AccountID) PublicKey() (ed25519.PublicKey, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	raw, err := base58.Decode(string(a))
	if err != nil {
		return nil, fmt.Errorf("failed to decode account id %s: %w", a, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length %d for account %s", len(raw), a)
	}
	return ed25519.PublicKey(raw), nil
}

type Account struct {
	Address AccountID `json:"address"`
	Balance uint64    `json:"balance"`
}

// GenesisAlloc is a balance credited when the ledger is initialised
type GenesisAlloc struct {
	Address AccountID `json:"address" yaml:"address"`
	Amount  uint64    `json:"amount" yaml:"amount"`
}

// Decimals is the number of fractional digits of one token
const Decimals = 9
