package service

import (
	"context"
	"strconv"
	"time"

	"github.com/web4asset/w4t/interfaces"
)

const (
	StatusServing    = "SERVING"
	StatusNotServing = "NOT_SERVING"
)

type HealthServiceImpl struct {
	ledger    interfaces.Ledger
	selfID    string
	version   string
	startedAt time.Time
}

func NewHealthService(ld interfaces.Ledger, selfID, version string) *HealthServiceImpl {
	return &HealthServiceImpl{ledger: ld, selfID: selfID, version: version, startedAt: time.Now()}
}

func (hs *HealthServiceImpl) Check(ctx context.Context) (*interfaces.HealthStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &interfaces.HealthStatus{
		Status:    StatusServing,
		NodeID:    hs.selfID,
		Timestamp: uint64(now.Unix()),
		Uptime:    uint64(now.Sub(hs.startedAt).Seconds()),
		Version:   hs.version,
	}

	if hs.ledger == nil {
		resp.Status = StatusNotServing
		resp.Error = "ledger is not available"
		return resp, nil
	}
	resp.TotalSupply = strconv.FormatUint(hs.ledger.GetTotalSupply(), 10)
	if err := hs.ledger.Audit(); err != nil {
		resp.Status = StatusNotServing
		resp.Error = err.Error()
	}
	return resp, nil
}
