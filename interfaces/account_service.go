package interfaces

import (
	"context"

	"github.com/web4asset/w4t/types"
)

type AccountInfo struct {
	Address   types.AccountID `json:"address"`
	Balance   string          `json:"balance"`
	NextNonce uint64          `json:"next_nonce"`
	Decimals  uint32          `json:"decimals"`
}

type AccountService interface {
	GetAccount(ctx context.Context, address types.AccountID) (*AccountInfo, error)
	GetNextNonce(ctx context.Context, address types.AccountID) (uint64, error)
}
