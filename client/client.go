package client

import (
	"context"
	stderrors "errors"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/web4asset/w4t/errors"
	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/types"
)

type Config struct {
	Endpoint string
}

// W4tClient talks JSON-RPC to a running node
type W4tClient struct {
	cfg Config
	rpc *jrpc2.Client
}

func NewClient(cfg Config) *W4tClient {
	ch := jhttp.NewChannel(cfg.Endpoint, nil)
	return &W4tClient{
		cfg: cfg,
		rpc: jrpc2.NewClient(ch, nil),
	}
}

func (c *W4tClient) call(ctx context.Context, method string, params, result interface{}) error {
	err := c.rpc.CallResult(ctx, method, params, result)
	if err == nil {
		return nil
	}
	var rpcErr *jrpc2.Error
	if stderrors.As(err, &rpcErr) && len(rpcErr.Data) > 0 {
		var networkError errors.NetworkError
		if jsonx.Unmarshal(rpcErr.Data, &networkError) == nil && networkError.Code != "" {
			return &networkError
		}
	}
	return err
}

func (c *W4tClient) CheckHealth(ctx context.Context) (*Health, error) {
	var res Health
	if err := c.call(ctx, "health.check", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *W4tClient) GetAccount(ctx context.Context, addr types.AccountID) (*Account, error) {
	var res Account
	if err := c.call(ctx, "ledger.getbalance", addressParams{Address: string(addr)}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *W4tClient) GetNextNonce(ctx context.Context, addr types.AccountID) (uint64, error) {
	var res nonceResult
	if err := c.call(ctx, "ledger.getnonce", addressParams{Address: string(addr)}, &res); err != nil {
		return 0, err
	}
	return res.NextNonce, nil
}

func (c *W4tClient) GetTotalSupply(ctx context.Context) (*Supply, error) {
	var res Supply
	if err := c.call(ctx, "ledger.gettotalsupply", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *W4tClient) Mint(ctx context.Context, sc origin.SignedCall) (*MintResult, error) {
	var res MintResult
	if err := c.call(ctx, "ledger.mint", ToSignedMint(sc), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *W4tClient) Audit(ctx context.Context) (*Audit, error) {
	var res Audit
	if err := c.call(ctx, "ledger.audit", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *W4tClient) StateHash(ctx context.Context) (string, error) {
	var res stateHashResult
	if err := c.call(ctx, "ledger.statehash", nil, &res); err != nil {
		return "", err
	}
	return res.StateHash, nil
}

func (c *W4tClient) Close() error {
	return c.rpc.Close()
}
