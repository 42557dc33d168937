package jsonrpc

import (
	"bytes"
	"net"
	"net/http"
	"strings"

	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/logx"
)

// JSON-RPC Method name constants
const (
	// Ledger methods
	MethodLedgerGetBalance     = "ledger.getbalance"
	MethodLedgerGetNonce       = "ledger.getnonce"
	MethodLedgerGetTotalSupply = "ledger.gettotalsupply"
	MethodLedgerMint           = "ledger.mint"
	MethodLedgerAudit          = "ledger.audit"
	MethodLedgerStateHash      = "ledger.statehash"

	// Health methods
	MethodHealthCheck = "health.check"
)

type jsonRPCRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	Method  string           `json:"method"`
	Params  jsonx.RawMessage `json:"params"`
	ID      jsonx.RawMessage `json:"id"`
}

// parseJSONRPCRequests accepts a single request or a batch
func parseJSONRPCRequests(body []byte) []jsonRPCRequest {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []jsonRPCRequest
		if err := jsonx.Unmarshal(trimmed, &batch); err != nil {
			return nil
		}
		return batch
	}
	var req jsonRPCRequest
	if err := jsonx.Unmarshal(trimmed, &req); err != nil {
		return nil
	}
	return []jsonRPCRequest{req}
}

func extractClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		logx.Debug("SECURITY", "X-Forwarded-For:", xff)
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return "unknown"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
