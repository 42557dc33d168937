package interfaces

import "context"

type HealthStatus struct {
	Status      string `json:"status"`
	NodeID      string `json:"node_id"`
	Timestamp   uint64 `json:"timestamp"`
	Uptime      uint64 `json:"uptime"`
	TotalSupply string `json:"total_supply"`
	Version     string `json:"version"`
	Error       string `json:"error,omitempty"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}
