package staking

import (
	"context"
	"time"

	"github.com/web4asset/w4t/exception"
	"github.com/web4asset/w4t/logx"
)

// SlotClock emits a FinalizedBlock every interval, authored by the scheduled leader.
// It stands in for a consensus engine on single-node deployments.
type SlotClock struct {
	scheduler *StakeWeightedScheduler
	interval  time.Duration
	next      uint64
}

// NewSlotClock creates a clock whose first block has slot start
func NewSlotClock(scheduler *StakeWeightedScheduler, interval time.Duration, start uint64) *SlotClock {
	return &SlotClock{scheduler: scheduler, interval: interval, next: start}
}

// Run emits blocks until ctx is done, then closes the returned channel
func (c *SlotClock) Run(ctx context.Context) <-chan FinalizedBlock {
	out := make(chan FinalizedBlock)
	exception.SafeGo("SlotClock", func() {
		defer close(out)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// without validators the block has no author and only a pool can be paid
				author, err := c.scheduler.LeaderAt(c.next)
				if err != nil {
					logx.Debug("CLOCK", "No leader for slot", c.next, ":", err)
				}
				select {
				case out <- FinalizedBlock{Slot: c.next, Author: author}:
					c.next++
				case <-ctx.Done():
					return
				}
			}
		}
	})
	return out
}
