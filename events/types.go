package events

import (
	"time"

	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventMintApplied  EventType = "MintApplied"
	EventMintRejected EventType = "MintRejected"
	EventRewardPaid   EventType = "RewardPaid"
)

// LedgerEvent represents any event emitted around a ledger transition
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	Account() types.AccountID
}

// MintApplied is published after a mint was committed
type MintApplied struct {
	caller    types.AccountID
	receipt   ledger.Receipt
	timestamp time.Time
}

func NewMintApplied(caller types.AccountID, receipt ledger.Receipt) *MintApplied {
	return &MintApplied{
		caller:    caller,
		receipt:   receipt,
		timestamp: time.Now(),
	}
}

func (e *MintApplied) Type() EventType {
	return EventMintApplied
}

func (e *MintApplied) Timestamp() time.Time {
	return e.timestamp
}

func (e *MintApplied) Account() types.AccountID {
	return e.receipt.Account
}

func (e *MintApplied) Caller() types.AccountID {
	return e.caller
}

func (e *MintApplied) Receipt() ledger.Receipt {
	return e.receipt
}

// MintRejected is published when a call fails before or during the transition
type MintRejected struct {
	caller    types.AccountID
	target    types.AccountID
	amount    uint64
	reason    string
	timestamp time.Time
}

func NewMintRejected(caller, target types.AccountID, amount uint64, reason string) *MintRejected {
	return &MintRejected{
		caller:    caller,
		target:    target,
		amount:    amount,
		reason:    reason,
		timestamp: time.Now(),
	}
}

func (e *MintRejected) Type() EventType {
	return EventMintRejected
}

func (e *MintRejected) Timestamp() time.Time {
	return e.timestamp
}

func (e *MintRejected) Account() types.AccountID {
	return e.target
}

func (e *MintRejected) Caller() types.AccountID {
	return e.caller
}

func (e *MintRejected) Amount() uint64 {
	return e.amount
}

func (e *MintRejected) Reason() string {
	return e.reason
}

// RewardPaid is published by the reward feed once a block reward was minted
type RewardPaid struct {
	slot      uint64
	receipt   ledger.Receipt
	timestamp time.Time
}

func NewRewardPaid(slot uint64, receipt ledger.Receipt) *RewardPaid {
	return &RewardPaid{
		slot:      slot,
		receipt:   receipt,
		timestamp: time.Now(),
	}
}

func (e *RewardPaid) Type() EventType {
	return EventRewardPaid
}

func (e *RewardPaid) Timestamp() time.Time {
	return e.timestamp
}

func (e *RewardPaid) Account() types.AccountID {
	return e.receipt.Account
}

func (e *RewardPaid) Slot() uint64 {
	return e.slot
}

func (e *RewardPaid) Receipt() ledger.Receipt {
	return e.receipt
}
