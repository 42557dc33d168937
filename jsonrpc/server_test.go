package jsonrpc

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web4asset/w4t/dispatch"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/ratelimit"
	"github.com/web4asset/w4t/service"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"error"`
}

type testNode struct {
	ledger *ledger.Ledger
	server *Server
	http   *httptest.Server
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	l, err := ledger.Open(stores.Balances, ledger.Saturating)
	require.NoError(t, err)

	d := dispatch.NewDispatcher(mint.NewTransition(l, nil), l, stores.Meta, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	srv := NewServer(
		service.NewAccountService(l, d),
		service.NewLedgerService(l),
		service.NewMintService(d),
		service.NewHealthService(l, "test-node", "test"),
	)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		srv.Close()
		d.Stop()
		cancel()
		stores.Close()
	})
	return &testNode{ledger: l, server: srv, http: hs}
}

func (n *testNode) call(t *testing.T, method string, params interface{}) rpcResponse {
	t.Helper()
	resp, status := n.post(t, method, params)
	require.Equal(t, http.StatusOK, status)
	return resp
}

func (n *testNode) post(t *testing.T, method string, params interface{}) (rpcResponse, int) {
	t.Helper()
	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpResp, err := http.Post(n.http.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var out rpcResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&out))
	return out, httpResp.StatusCode
}

func signedMintParams(t *testing.T, priv ed25519.PrivateKey, target string, amount, nonce uint64) mintParams {
	t.Helper()
	caller := types.AccountIDFromPublicKey(priv.Public().(ed25519.PublicKey))
	sc := origin.Sign(origin.Call{Caller: caller, Target: types.AccountID(target), Amount: amount, Nonce: nonce}, priv)
	return mintParams{
		Call: callParams{
			Caller: string(caller),
			Target: target,
			Amount: strconv.FormatUint(amount, 10),
			Nonce:  nonce,
		},
		Signature: sc.Signature,
	}
}

func TestServer_MintAndQuery(t *testing.T) {
	node := newTestNode(t)
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	resp := node.call(t, MethodLedgerMint, signedMintParams(t, priv, "bob", 500, 1))
	require.Nil(t, resp.Error)
	var minted mintResponse
	require.NoError(t, json.Unmarshal(resp.Result, &minted))
	assert.Equal(t, "500", minted.Applied)
	assert.Equal(t, "500", minted.TotalSupply)
	assert.False(t, minted.Saturated)

	resp = node.call(t, MethodLedgerGetBalance, addressParams{Address: "bob"})
	require.Nil(t, resp.Error)
	var account struct {
		Balance  string `json:"balance"`
		Decimals uint32 `json:"decimals"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &account))
	assert.Equal(t, "500", account.Balance)
	assert.Equal(t, uint32(types.Decimals), account.Decimals)

	resp = node.call(t, MethodLedgerGetTotalSupply, nil)
	require.Nil(t, resp.Error)
	var supply struct {
		TotalSupply string `json:"total_supply"`
		Accounts    int    `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &supply))
	assert.Equal(t, "500", supply.TotalSupply)
	assert.Equal(t, 1, supply.Accounts)

	caller := types.AccountIDFromPublicKey(priv.Public().(ed25519.PublicKey))
	resp = node.call(t, MethodLedgerGetNonce, addressParams{Address: string(caller)})
	require.Nil(t, resp.Error)
	var nonce getNonceResponse
	require.NoError(t, json.Unmarshal(resp.Result, &nonce))
	assert.Equal(t, uint64(2), nonce.NextNonce)
}

func TestServer_MintErrors(t *testing.T) {
	node := newTestNode(t)
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	params := signedMintParams(t, priv, "bob", 500, 1)
	params.Signature = ""
	resp := node.call(t, MethodLedgerMint, params)
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeUnauthorized), resp.Error.Code)

	params = signedMintParams(t, priv, "bob", 500, 1)
	params.Call.Amount = "501"
	resp = node.call(t, MethodLedgerMint, params)
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeInvalidParam), resp.Error.Code)
	assert.Contains(t, string(resp.Error.Data), "invalid_signature")

	params = signedMintParams(t, priv, "bob", 500, 1)
	params.Call.Amount = "-1"
	resp = node.call(t, MethodLedgerMint, params)
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeInvalidParam), resp.Error.Code)

	resp = node.call(t, MethodLedgerMint, signedMintParams(t, priv, "bob", 500, 7))
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeInvalidNonce), resp.Error.Code)

	assert.Zero(t, node.ledger.GetTotalSupply())
}

func TestServer_AuditAndStateHash(t *testing.T) {
	node := newTestNode(t)
	_, err := node.ledger.Credit("alice", 10)
	require.NoError(t, err)

	resp := node.call(t, MethodLedgerAudit, nil)
	require.Nil(t, resp.Error)
	var audit struct {
		Ok        bool   `json:"ok"`
		StateHash string `json:"state_hash"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &audit))
	assert.True(t, audit.Ok)

	resp = node.call(t, MethodLedgerStateHash, nil)
	require.Nil(t, resp.Error)
	var hash stateHashResponse
	require.NoError(t, json.Unmarshal(resp.Result, &hash))
	assert.Equal(t, audit.StateHash, hash.StateHash)

	resp = node.call(t, MethodHealthCheck, nil)
	require.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), `"SERVING"`)
}

func TestServer_InvalidAddress(t *testing.T) {
	node := newTestNode(t)
	resp := node.call(t, MethodLedgerGetBalance, addressParams{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeInvalidParam), resp.Error.Code)
}

func TestServer_RateLimitsMint(t *testing.T) {
	node := newTestNode(t)
	window := func(n int) *ratelimit.RateLimiterConfig {
		return &ratelimit.RateLimiterConfig{MaxRequests: n, WindowSize: time.Minute, CleanupInterval: time.Minute}
	}
	limiter := ratelimit.NewMintRateLimiter(&ratelimit.MintRateLimiterConfig{
		IPConfig:     window(100),
		CallerConfig: window(1),
		GlobalConfig: window(100),
	})
	defer limiter.Stop()
	node.server.SetRateLimiter(limiter)

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	resp, status := node.post(t, MethodLedgerMint, signedMintParams(t, priv, "bob", 1, 1))
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, resp.Error)

	resp, status = node.post(t, MethodLedgerMint, signedMintParams(t, priv, "bob", 1, 2))
	assert.Equal(t, http.StatusTooManyRequests, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, int(codeRateLimited), resp.Error.Code)

	// queries are never limited
	resp = node.call(t, MethodLedgerGetTotalSupply, nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, uint64(1), node.ledger.GetTotalSupply())
}

func TestServer_RejectsOversizedBodyWithoutLimiter(t *testing.T) {
	node := newTestNode(t)

	body := append([]byte(`{"jsonrpc":"2.0","id":1,"method":"ledger.gettotalsupply","params":"`), bytes.Repeat([]byte("a"), maxRequestBodySize)...)
	body = append(body, []byte(`"}`)...)

	w := httptest.NewRecorder()
	node.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// a normal request still goes through
	resp := node.call(t, MethodLedgerGetTotalSupply, nil)
	require.Nil(t, resp.Error)
}

func TestServer_CORS(t *testing.T) {
	node := newTestNode(t)
	node.server.SetCORSConfig(CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"POST"}})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	node.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CORS_MAX_AGE", "60")

	cfg, ok := CORSFromEnv()
	require.True(t, ok)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 60, cfg.MaxAge)
}
