// Package dispatch is the host side of the ledger: it verifies signed calls,
// enforces per-caller nonces and applies mints one at a time on a single lane.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/web4asset/w4t/events"
	"github.com/web4asset/w4t/exception"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/monitoring"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
)

const DefaultQueueSize = 1024

var (
	ErrInvalidNonce = errors.New("invalid nonce")
	ErrStopped      = errors.New("dispatcher stopped")
	ErrQueueFull    = errors.New("dispatch queue is full")
)

// LedgerView is the read side the dispatcher reports metrics from
type LedgerView interface {
	GetTotalSupply() uint64
	AccountCount() int
}

type result struct {
	receipt ledger.Receipt
	err     error
}

type request struct {
	origin origin.Origin
	call   origin.Call
	done   chan result
}

type Dispatcher struct {
	transition *mint.Transition
	view       LedgerView
	meta       store.MetaStore
	bus        *events.EventBus

	queue   chan *request
	quit    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher creates a dispatcher. bus may be nil, queueSize <= 0 uses DefaultQueueSize.
func NewDispatcher(transition *mint.Transition, view LedgerView, meta store.MetaStore, bus *events.EventBus, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		transition: transition,
		view:       view,
		meta:       meta,
		bus:        bus,
		queue:      make(chan *request, queueSize),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Start runs the execution lane until Stop is called or ctx is done
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		monitoring.SetLedgerState(d.view.GetTotalSupply(), d.view.AccountCount())
		exception.SafeGoWithPanic("dispatch.lane", func() {
			d.run(ctx)
		})
		logx.Info("DISPATCH", "Execution lane started, queue size:", cap(d.queue))
	})
}

// Stop stops the lane and fails every queued call with ErrStopped
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
	})
	d.startOnce.Do(func() {
		// never started, nothing to wait for
		close(d.stopped)
	})
	<-d.stopped
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.stopped)
	for {
		select {
		case <-ctx.Done():
			d.stopOnce.Do(func() {
				close(d.quit)
			})
			d.drain()
			return
		case <-d.quit:
			d.drain()
			return
		case req := <-d.queue:
			monitoring.SetQueueDepth(len(d.queue))
			req.done <- d.apply(req)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case req := <-d.queue:
			req.done <- result{err: ErrStopped}
		default:
			logx.Info("DISPATCH", "Execution lane stopped")
			return
		}
	}
}

// Submit verifies sc, queues it and waits for it to be applied
func (d *Dispatcher) Submit(ctx context.Context, sc origin.SignedCall) (ledger.Receipt, error) {
	o, err := origin.Verify(sc)
	if err != nil {
		d.reject(sc.Call, err)
		return ledger.Receipt{}, err
	}

	select {
	case <-d.quit:
		return ledger.Receipt{}, ErrStopped
	default:
	}

	req := &request{origin: o, call: sc.Call, done: make(chan result, 1)}
	select {
	case d.queue <- req:
		monitoring.SetQueueDepth(len(d.queue))
	default:
		logx.Warn("DISPATCH", "Queue full, dropping call from", sc.Call.Caller)
		return ledger.Receipt{}, ErrQueueFull
	}

	select {
	case res := <-req.done:
		return res.receipt, res.err
	case <-d.stopped:
		select {
		case res := <-req.done:
			return res.receipt, res.err
		default:
			return ledger.Receipt{}, ErrStopped
		}
	case <-ctx.Done():
		// the call stays queued and may still be applied
		return ledger.Receipt{}, ctx.Err()
	}
}

// NextNonce returns the nonce the next call from caller must carry
func (d *Dispatcher) NextNonce(caller types.AccountID) (uint64, error) {
	last, err := d.meta.GetNonce(caller)
	if err != nil {
		return 0, fmt.Errorf("read nonce: %w", err)
	}
	return last + 1, nil
}

// apply runs on the lane only. The nonce is persisted before the mint so a
// crash between the two can never replay the call.
func (d *Dispatcher) apply(req *request) result {
	start := time.Now()
	defer func() {
		monitoring.RecordApplyLatency(time.Since(start))
	}()

	caller := req.call.Caller
	last, err := d.meta.GetNonce(caller)
	if err != nil {
		err = fmt.Errorf("read nonce: %w", err)
		d.reject(req.call, err)
		return result{err: err}
	}
	if req.call.Nonce != last+1 {
		err = fmt.Errorf("%w: got %d, want %d", ErrInvalidNonce, req.call.Nonce, last+1)
		d.reject(req.call, err)
		return result{err: err}
	}
	if err := d.meta.SetNonce(caller, req.call.Nonce); err != nil {
		err = fmt.Errorf("persist nonce: %w", err)
		d.reject(req.call, err)
		return result{err: err}
	}

	receipt, err := d.transition.Mint(req.origin, req.call.Target, req.call.Amount)
	if err != nil {
		d.reject(req.call, err)
		return result{err: err}
	}

	monitoring.RecordMint(receipt.Requested, receipt.Applied)
	monitoring.SetLedgerState(receipt.TotalSupply, d.view.AccountCount())
	if receipt.Applied < receipt.Requested {
		logx.Warn("DISPATCH", fmt.Sprintf("Mint saturated | target=%s | requested=%d | applied=%d", receipt.Account, receipt.Requested, receipt.Applied))
	}
	logx.Debug("DISPATCH", fmt.Sprintf("Mint applied | caller=%s | target=%s | amount=%d | supply=%d", caller, receipt.Account, receipt.Applied, receipt.TotalSupply))
	if d.bus != nil {
		d.bus.Publish(events.NewMintApplied(caller, receipt))
	}
	return result{receipt: receipt}
}

func (d *Dispatcher) reject(call origin.Call, err error) {
	reason := rejectReason(err)
	monitoring.RecordRejectedMint(reason)
	logx.Warn("DISPATCH", fmt.Sprintf("Mint rejected | caller=%s | target=%s | amount=%d | reason=%s | err=%v", call.Caller, call.Target, call.Amount, reason, err))
	if d.bus != nil {
		d.bus.Publish(events.NewMintRejected(call.Caller, call.Target, call.Amount, string(reason)))
	}
}

func rejectReason(err error) monitoring.MintRejectedReason {
	switch {
	case errors.Is(err, mint.ErrUnauthorized), errors.Is(err, origin.ErrMissingSignature):
		return monitoring.MintUnauthorized
	case errors.Is(err, mint.ErrNotMinter):
		return monitoring.MintNotMinter
	case errors.Is(err, origin.ErrInvalidSignature), errors.Is(err, origin.ErrMalformedCaller):
		return monitoring.MintInvalidSignature
	case errors.Is(err, ErrInvalidNonce):
		return monitoring.MintInvalidNonce
	case errors.Is(err, ledger.ErrOverflow):
		return monitoring.MintOverflow
	case errors.Is(err, ledger.ErrInvalidAccount):
		return monitoring.MintInvalidAccount
	default:
		return monitoring.MintRejectedUnknown
	}
}
