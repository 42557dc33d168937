package store

import (
	"fmt"

	"github.com/web4asset/w4t/db"
	"github.com/web4asset/w4t/types"
)

// MetaStore keeps host bookkeeping next to the ledger state: the last accepted
// nonce of every caller and the last slot the reward feed paid out.
// Keys:
// - PrefixNonce + <account> => last accepted nonce
// - KeyLastRewardSlot       => last rewarded slot
type MetaStore interface {
	GetNonce(account types.AccountID) (uint64, error)
	SetNonce(account types.AccountID, nonce uint64) error
	GetLastRewardSlot() (uint64, bool, error)
	SetLastRewardSlot(slot uint64) error
}

type GenericMetaStore struct {
	provider db.DatabaseProvider
}

func NewGenericMetaStore(provider db.DatabaseProvider) *GenericMetaStore {
	return &GenericMetaStore{provider: provider}
}

func (s *GenericMetaStore) GetNonce(account types.AccountID) (uint64, error) {
	value, err := s.provider.Get([]byte(PrefixNonce + string(account)))
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce for %s: %w", account, err)
	}
	return decodeUint64(value)
}

func (s *GenericMetaStore) SetNonce(account types.AccountID, nonce uint64) error {
	value, err := encodeUint64(nonce)
	if err != nil {
		return err
	}
	if err := s.provider.Put([]byte(PrefixNonce+string(account)), value); err != nil {
		return fmt.Errorf("failed to store nonce for %s: %w", account, err)
	}
	return nil
}

func (s *GenericMetaStore) GetLastRewardSlot() (uint64, bool, error) {
	// slot 0 encodes to an empty value, so existence is checked separately
	exists, err := s.provider.Has([]byte(KeyLastRewardSlot))
	if err != nil {
		return 0, false, fmt.Errorf("failed to check last reward slot: %w", err)
	}
	if !exists {
		return 0, false, nil
	}
	value, err := s.provider.Get([]byte(KeyLastRewardSlot))
	if err != nil {
		return 0, false, fmt.Errorf("failed to get last reward slot: %w", err)
	}
	slot, err := decodeUint64(value)
	if err != nil {
		return 0, false, err
	}
	return slot, true, nil
}

func (s *GenericMetaStore) SetLastRewardSlot(slot uint64) error {
	value, err := encodeUint64(slot)
	if err != nil {
		return err
	}
	if err := s.provider.Put([]byte(KeyLastRewardSlot), value); err != nil {
		return fmt.Errorf("failed to store last reward slot %d: %w", slot, err)
	}
	return nil
}
