package interfaces

import "context"

type SupplyInfo struct {
	TotalSupply string `json:"total_supply"`
	Accounts    int    `json:"accounts"`
	Decimals    uint32 `json:"decimals"`
}

type AuditResult struct {
	Ok          bool   `json:"ok"`
	TotalSupply string `json:"total_supply"`
	StateHash   string `json:"state_hash"`
	Error       string `json:"error,omitempty"`
}

type LedgerService interface {
	GetTotalSupply(ctx context.Context) (*SupplyInfo, error)
	Audit(ctx context.Context) (*AuditResult, error)
	StateHash(ctx context.Context) (string, error)
}
