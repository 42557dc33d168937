package jsonrpc

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/web4asset/w4t/errors"
	"github.com/web4asset/w4t/interfaces"
	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/ratelimit"
	"github.com/web4asset/w4t/types"
)

const maxRequestBodySize = 1 << 20

// JSON-RPC error codes, the -32000 range is reserved for application errors
const (
	codeInternal     jrpc2.Code = -32000
	codeUnauthorized jrpc2.Code = -32001
	codeOverflow     jrpc2.Code = -32002
	codeInvalidNonce jrpc2.Code = -32003
	codeUnavailable  jrpc2.Code = -32005
	codeRateLimited  jrpc2.Code = -32029
	codeInvalidParam jrpc2.Code = -32602
)

func errorCode(code errors.NetworkErrorCode) jrpc2.Code {
	switch code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidAddress, errors.ErrCodeInvalidSignature:
		return codeInvalidParam
	case errors.ErrCodeUnauthorized, errors.ErrCodeNotMinter:
		return codeUnauthorized
	case errors.ErrCodeOverflow:
		return codeOverflow
	case errors.ErrCodeInvalidNonce:
		return codeInvalidNonce
	case errors.ErrCodeQueueFull, errors.ErrCodeUnavailable:
		return codeUnavailable
	default:
		return codeInternal
	}
}

func toJRPC2Error(err error) error {
	if err == nil {
		return nil
	}
	networkError := errors.Classify(err)
	return jrpc2.Errorf(errorCode(networkError.Code), "%s", networkError.Message).WithData(networkError)
}

// --- Params/Results ---

type addressParams struct {
	Address string `json:"address"`
}

type getNonceResponse struct {
	Address   string `json:"address"`
	NextNonce uint64 `json:"next_nonce"`
}

type callParams struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Amount string `json:"amount"`
	Nonce  uint64 `json:"nonce"`
}

type mintParams struct {
	Call      callParams `json:"call"`
	Signature string     `json:"signature"`
}

type mintResponse struct {
	Account     string `json:"account"`
	Requested   string `json:"requested"`
	Applied     string `json:"applied"`
	Balance     string `json:"balance"`
	TotalSupply string `json:"total_supply"`
	Saturated   bool   `json:"saturated"`
}

type stateHashResponse struct {
	StateHash string `json:"state_hash"`
}

func (p mintParams) toSignedCall() (origin.SignedCall, error) {
	amount, err := strconv.ParseUint(strings.TrimSpace(p.Call.Amount), 10, 64)
	if err != nil {
		return origin.SignedCall{}, errors.NewError(errors.ErrCodeInvalidRequest, "Amount must be a base-10 unsigned integer")
	}
	return origin.SignedCall{
		Call: origin.Call{
			Caller: types.AccountID(p.Call.Caller),
			Target: types.AccountID(p.Call.Target),
			Amount: amount,
			Nonce:  p.Call.Nonce,
		},
		Signature: p.Signature,
	}, nil
}

func newMintResponse(r ledger.Receipt) *mintResponse {
	return &mintResponse{
		Account:     string(r.Account),
		Requested:   strconv.FormatUint(r.Requested, 10),
		Applied:     strconv.FormatUint(r.Applied, 10),
		Balance:     strconv.FormatUint(r.Balance, 10),
		TotalSupply: strconv.FormatUint(r.TotalSupply, 10),
		Saturated:   r.Applied < r.Requested,
	}
}

// --- Server ---

type Server struct {
	acctSvc    interfaces.AccountService
	ledgerSvc  interfaces.LedgerService
	mintSvc    interfaces.MintService
	healthSvc  interfaces.HealthService
	limiter    *ratelimit.MintRateLimiter
	corsConfig CORSConfig

	once    sync.Once
	bridge  jhttp.Bridge
	handler http.Handler
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(acctSvc interfaces.AccountService, ledgerSvc interfaces.LedgerService, mintSvc interfaces.MintService, healthSvc interfaces.HealthService) *Server {
	return &Server{
		acctSvc:   acctSvc,
		ledgerSvc: ledgerSvc,
		mintSvc:   mintSvc,
		healthSvc: healthSvc,
	}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// SetRateLimiter limits ledger.mint requests; nil disables limiting
func (s *Server) SetRateLimiter(limiter *ratelimit.MintRateLimiter) {
	s.limiter = limiter
}

// Handler returns the HTTP handler serving JSON-RPC requests
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.bridge = jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})
		s.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.setCORSHeaders(w, r)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			body, ok := readBody(w, r)
			if !ok {
				return
			}
			if !s.allowRequest(w, r, body) {
				return
			}
			s.bridge.ServeHTTP(w, r)
		})
	})
	return s.handler
}

// Close shuts down the JSON-RPC bridge
func (s *Server) Close() error {
	if s.handler == nil {
		return nil
	}
	return s.bridge.Close()
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodLedgerGetBalance: handler.New(func(ctx context.Context, p addressParams) (*interfaces.AccountInfo, error) {
			res, err := s.acctSvc.GetAccount(ctx, types.AccountID(p.Address))
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodLedgerGetNonce: handler.New(func(ctx context.Context, p addressParams) (*getNonceResponse, error) {
			nonce, err := s.acctSvc.GetNextNonce(ctx, types.AccountID(p.Address))
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return &getNonceResponse{Address: p.Address, NextNonce: nonce}, nil
		}),
		MethodLedgerGetTotalSupply: handler.New(func(ctx context.Context) (*interfaces.SupplyInfo, error) {
			res, err := s.ledgerSvc.GetTotalSupply(ctx)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodLedgerMint: handler.New(func(ctx context.Context, p mintParams) (*mintResponse, error) {
			call, err := p.toSignedCall()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			receipt, err := s.mintSvc.Mint(ctx, call)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return newMintResponse(receipt), nil
		}),
		MethodLedgerAudit: handler.New(func(ctx context.Context) (*interfaces.AuditResult, error) {
			res, err := s.ledgerSvc.Audit(ctx)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodLedgerStateHash: handler.New(func(ctx context.Context) (*stateHashResponse, error) {
			hash, err := s.ledgerSvc.StateHash(ctx)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return &stateHashResponse{StateHash: hash}, nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*interfaces.HealthStatus, error) {
			res, err := s.healthSvc.Check(ctx)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
	}
}

// --- Helpers ---

// readBody caps the request body at maxRequestBodySize and buffers it so the
// bridge can still read it
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("request body exceeds maximum allowed size (%d bytes)", maxRequestBodySize), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, true
}

// allowRequest applies the mint rate limits to an already buffered body
func (s *Server) allowRequest(w http.ResponseWriter, r *http.Request, body []byte) bool {
	if s.limiter == nil {
		return true
	}

	ip := extractClientIPFromRequest(r)
	for _, req := range parseJSONRPCRequests(body) {
		if req.Method != MethodLedgerMint {
			continue
		}
		var p mintParams
		_ = jsonx.Unmarshal(req.Params, &p)
		if err := s.limiter.Check(ip, p.Call.Caller); err != nil {
			logx.Warn("SECURITY", "Mint rate limited:", err)
			writeRateLimited(w, req.ID, err)
			return false
		}
	}
	return true
}

func writeRateLimited(w http.ResponseWriter, id jsonx.RawMessage, cause error) {
	if len(id) == 0 {
		id = jsonx.RawMessage("null")
	}
	body, _ := jsonx.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    codeRateLimited,
			"message": "Too many requests, please slow down",
			"data":    cause.Error(),
		},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write(body)
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}
	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}
	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(s.corsConfig.MaxAge))
	}
}

// --- Env helpers ---

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	var maxAge int
	if v, err := strconv.Atoi(os.Getenv("CORS_MAX_AGE")); err == nil {
		maxAge = v
	}
	cfg := CORSConfig{
		AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		AllowedMethods: splitAndTrim(os.Getenv("CORS_ALLOWED_METHODS")),
		AllowedHeaders: splitAndTrim(os.Getenv("CORS_ALLOWED_HEADERS")),
		MaxAge:         maxAge,
	}
	provided := len(cfg.AllowedOrigins) > 0 || len(cfg.AllowedMethods) > 0 || len(cfg.AllowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}
	return cfg, true
}
