package store

import (
	"fmt"
	"strings"

	"github.com/web4asset/w4t/db"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

// BalanceStore persists account balances and the total supply counter
type BalanceStore interface {
	// Load returns every stored balance and the stored total supply
	Load() (map[types.AccountID]uint64, uint64, error)
	// Commit writes one account balance and the new total supply in a single batch
	Commit(account types.AccountID, balance uint64, supply uint64) error
	// CommitAll writes several balances and the new total supply in a single batch
	CommitAll(balances map[types.AccountID]uint64, supply uint64) error
	MustClose()
}

type GenericBalanceStore struct {
	dbProvider db.IterableProvider
	txManager  *db.DBTxManager
}

func NewGenericBalanceStore(dbProvider db.IterableProvider) (*GenericBalanceStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericBalanceStore{
		dbProvider: dbProvider,
		txManager:  db.NewDBTxManager(dbProvider),
	}, nil
}

func (bs *GenericBalanceStore) Load() (map[types.AccountID]uint64, uint64, error) {
	balances := make(map[types.AccountID]uint64)

	var decodeErr error
	err := bs.dbProvider.IteratePrefix([]byte(PrefixBalance), func(key, value []byte) bool {
		balance, err := decodeUint64(value)
		if err != nil {
			decodeErr = fmt.Errorf("account %s: %w", key, err)
			return false
		}
		balances[types.AccountID(strings.TrimPrefix(string(key), PrefixBalance))] = balance
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("could not iterate balances: %w", err)
	}
	if decodeErr != nil {
		return nil, 0, decodeErr
	}

	data, err := bs.dbProvider.Get([]byte(KeyTotalSupply))
	if err != nil {
		return nil, 0, fmt.Errorf("could not get total supply from db: %w", err)
	}
	supply, err := decodeUint64(data)
	if err != nil {
		return nil, 0, fmt.Errorf("total supply: %w", err)
	}

	return balances, supply, nil
}

func (bs *GenericBalanceStore) Commit(account types.AccountID, balance uint64, supply uint64) error {
	balanceData, err := encodeUint64(balance)
	if err != nil {
		return err
	}
	supplyData, err := encodeUint64(supply)
	if err != nil {
		return err
	}

	return bs.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		batch.Put(balanceKey(account), balanceData)
		batch.Put([]byte(KeyTotalSupply), supplyData)
		return nil
	})
}

func (bs *GenericBalanceStore) CommitAll(balances map[types.AccountID]uint64, supply uint64) error {
	supplyData, err := encodeUint64(supply)
	if err != nil {
		return err
	}

	return bs.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		for account, balance := range balances {
			balanceData, err := encodeUint64(balance)
			if err != nil {
				return fmt.Errorf("account %s: %w", account, err)
			}
			batch.Put(balanceKey(account), balanceData)
		}
		batch.Put([]byte(KeyTotalSupply), supplyData)
		return nil
	})
}

func (bs *GenericBalanceStore) MustClose() {
	if err := bs.dbProvider.Close(); err != nil {
		logx.Error("BALANCE_STORE", "Failed to close db provider:", err.Error())
	}
}

func balanceKey(account types.AccountID) []byte {
	return []byte(PrefixBalance + string(account))
}
