package service

import (
	"context"
	"fmt"

	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/origin"
)

// Submitter applies signed mint calls, see dispatch.Dispatcher
type Submitter interface {
	Submit(ctx context.Context, sc origin.SignedCall) (ledger.Receipt, error)
}

type MintServiceImpl struct {
	submitter Submitter
}

func NewMintService(submitter Submitter) *MintServiceImpl {
	return &MintServiceImpl{submitter: submitter}
}

func (s *MintServiceImpl) Mint(ctx context.Context, call origin.SignedCall) (ledger.Receipt, error) {
	logx.Info("RPC", fmt.Sprintf("Mint request | caller=%s | target=%s | amount=%d | nonce=%d", call.Call.Caller, call.Call.Target, call.Call.Amount, call.Call.Nonce))
	return s.submitter.Submit(ctx, call)
}
