package service

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/web4asset/w4t/interfaces"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

type LedgerServiceImpl struct {
	ledger interfaces.Ledger
}

func NewLedgerService(ld interfaces.Ledger) *LedgerServiceImpl {
	return &LedgerServiceImpl{ledger: ld}
}

func (s *LedgerServiceImpl) GetTotalSupply(ctx context.Context) (*interfaces.SupplyInfo, error) {
	return &interfaces.SupplyInfo{
		TotalSupply: strconv.FormatUint(s.ledger.GetTotalSupply(), 10),
		Accounts:    s.ledger.AccountCount(),
		Decimals:    types.Decimals,
	}, nil
}

// Audit never fails the call itself, a broken invariant is reported in the result
func (s *LedgerServiceImpl) Audit(ctx context.Context) (*interfaces.AuditResult, error) {
	hash := s.ledger.StateHash()
	result := &interfaces.AuditResult{
		Ok:          true,
		TotalSupply: strconv.FormatUint(s.ledger.GetTotalSupply(), 10),
		StateHash:   hex.EncodeToString(hash[:]),
	}
	if err := s.ledger.Audit(); err != nil {
		logx.Error("AUDIT", "Ledger audit failed:", err)
		result.Ok = false
		result.Error = err.Error()
	}
	return result, nil
}

func (s *LedgerServiceImpl) StateHash(ctx context.Context) (string, error) {
	hash := s.ledger.StateHash()
	return hex.EncodeToString(hash[:]), nil
}
