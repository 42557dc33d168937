package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MintRejectedReason string

var (
	MintUnauthorized     MintRejectedReason = "unauthorized"
	MintNotMinter        MintRejectedReason = "not_minter"
	MintInvalidSignature MintRejectedReason = "invalid_signature"
	MintInvalidNonce     MintRejectedReason = "invalid_nonce"
	MintOverflow         MintRejectedReason = "overflow"
	MintInvalidAccount   MintRejectedReason = "invalid_account"
	MintRejectedUnknown  MintRejectedReason = "other"
)

type ledgerPromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	totalSupply       prometheus.Gauge
	accountCount      prometheus.Gauge
	mintCount         prometheus.Counter
	mintedAmount      prometheus.Counter
	saturatedAmount   prometheus.Counter
	rejectedMintCount *prometheus.CounterVec
	rewardCount       prometheus.Counter
	lastRewardSlot    prometheus.Gauge
	queueDepth        prometheus.Gauge
	applyLatency      prometheus.Histogram
	panicCount        prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "w4t_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		totalSupply: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "w4t_ledger_total_supply",
				Help: "Current total supply in base units",
			},
		),
		accountCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "w4t_ledger_account_count",
				Help: "Number of accounts holding a balance entry",
			},
		),
		mintCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "w4t_ledger_mint_count",
				Help: "The total number of applied mint calls",
			},
		),
		mintedAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "w4t_ledger_minted_amount",
				Help: "Sum of applied mint deltas",
			},
		),
		saturatedAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "w4t_ledger_saturated_amount",
				Help: "Requested mint amount dropped by saturation at the uint64 ceiling",
			},
		),
		rejectedMintCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "w4t_ledger_rejected_mint_count",
				Help: "The total number of rejected mint calls",
			},
			[]string{"reason"},
		),
		rewardCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "w4t_reward_paid_count",
				Help: "Number of block rewards paid by the reward feed",
			},
		),
		lastRewardSlot: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "w4t_reward_last_slot",
				Help: "Last slot the reward feed paid",
			},
		),
		queueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "w4t_dispatch_queue_depth",
				Help: "Calls waiting in the dispatcher lane",
			},
		),
		applyLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "w4t_dispatch_apply_seconds",
				Help: "Latency in second from submission until the call is applied or rejected",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "w4t_node_panic_count",
				Help: "Recovered panics in background goroutines",
			},
		),
	}
}

var (
	initOnce    sync.Once
	nodeMetrics *ledgerPromMetrics
)

// InitMetrics registers the metrics with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newLedgerPromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *ledgerPromMetrics {
	InitMetrics()
	return nodeMetrics
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func SetLedgerState(supply uint64, accounts int) {
	m := metrics()
	m.totalSupply.Set(float64(supply))
	m.accountCount.Set(float64(accounts))
}

func RecordMint(requested, applied uint64) {
	m := metrics()
	m.mintCount.Inc()
	m.mintedAmount.Add(float64(applied))
	if requested > applied {
		m.saturatedAmount.Add(float64(requested - applied))
	}
}

func RecordRejectedMint(reason MintRejectedReason) {
	metrics().rejectedMintCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func RecordReward(slot uint64) {
	m := metrics()
	m.rewardCount.Inc()
	m.lastRewardSlot.Set(float64(slot))
}

func SetQueueDepth(depth int) {
	metrics().queueDepth.Set(float64(depth))
}

func RecordApplyLatency(d time.Duration) {
	metrics().applyLatency.Observe(d.Seconds())
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
