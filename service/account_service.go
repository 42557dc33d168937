package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/web4asset/w4t/interfaces"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

// NonceSource reports the nonce a caller's next call must carry
type NonceSource interface {
	NextNonce(caller types.AccountID) (uint64, error)
}

type AccountServiceImpl struct {
	ledger interfaces.Ledger
	nonces NonceSource
}

func NewAccountService(ld interfaces.Ledger, nonces NonceSource) *AccountServiceImpl {
	return &AccountServiceImpl{ledger: ld, nonces: nonces}
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, address types.AccountID) (*interfaces.AccountInfo, error) {
	if err := address.Validate(); err != nil {
		return nil, err
	}
	nonce, err := s.nonces.NextNonce(address)
	if err != nil {
		logx.Error("RPC GET ACCOUNT", "Nonce lookup failed", err)
		return nil, err
	}
	balance := s.ledger.GetBalance(address)
	logx.Debug("RPC", fmt.Sprintf("GetAccount response for address: %s, balance: %d, next nonce: %d", address, balance, nonce))

	return &interfaces.AccountInfo{
		Address:   address,
		Balance:   strconv.FormatUint(balance, 10),
		NextNonce: nonce,
		Decimals:  types.Decimals,
	}, nil
}

func (s *AccountServiceImpl) GetNextNonce(ctx context.Context, address types.AccountID) (uint64, error) {
	if err := address.Validate(); err != nil {
		return 0, err
	}
	return s.nonces.NextNonce(address)
}
