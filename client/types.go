package client

import (
	"github.com/web4asset/w4t/origin"
)

// MintCall mirrors the ledger.mint params on the wire; amounts travel as decimal strings
type MintCall struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Amount string `json:"amount"`
	Nonce  uint64 `json:"nonce"`
}

type SignedMint struct {
	Call      MintCall `json:"call"`
	Signature string   `json:"signature"`
}

type MintResult struct {
	Account     string `json:"account"`
	Requested   string `json:"requested"`
	Applied     string `json:"applied"`
	Balance     string `json:"balance"`
	TotalSupply string `json:"total_supply"`
	Saturated   bool   `json:"saturated"`
}

type Account struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	NextNonce uint64 `json:"next_nonce"`
	Decimals  uint32 `json:"decimals"`
}

type Supply struct {
	TotalSupply string `json:"total_supply"`
	Accounts    int    `json:"accounts"`
	Decimals    uint32 `json:"decimals"`
}

type Audit struct {
	Ok          bool   `json:"ok"`
	TotalSupply string `json:"total_supply"`
	StateHash   string `json:"state_hash"`
	Error       string `json:"error,omitempty"`
}

type Health struct {
	Status      string `json:"status"`
	NodeID      string `json:"node_id"`
	Timestamp   uint64 `json:"timestamp"`
	Uptime      uint64 `json:"uptime"`
	TotalSupply string `json:"total_supply"`
	Version     string `json:"version"`
	Error       string `json:"error,omitempty"`
}

type addressParams struct {
	Address string `json:"address"`
}

type nonceResult struct {
	Address   string `json:"address"`
	NextNonce uint64 `json:"next_nonce"`
}

type stateHashResult struct {
	StateHash string `json:"state_hash"`
}

// ToSignedMint converts a signed call into its wire form
func ToSignedMint(sc origin.SignedCall) SignedMint {
	return SignedMint{
		Call: MintCall{
			Caller: string(sc.Call.Caller),
			Target: string(sc.Call.Target),
			Amount: formatUint(sc.Call.Amount),
			Nonce:  sc.Call.Nonce,
		},
		Signature: sc.Signature,
	}
}
