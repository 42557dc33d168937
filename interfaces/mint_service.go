package interfaces

import (
	"context"

	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/origin"
)

type MintService interface {
	Mint(ctx context.Context, call origin.SignedCall) (ledger.Receipt, error)
}
