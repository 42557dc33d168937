package staking

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"github.com/web4asset/w4t/events"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/monitoring"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/types"
)

var ErrNoRecipient = errors.New("reward has no recipient")

// FinalizedBlock is the part of a finalized block the reward feed needs
type FinalizedBlock struct {
	Slot   uint64          `json:"slot"`
	Author types.AccountID `json:"author"`
}

// Submitter is the host the feed mints through
type Submitter interface {
	Submit(ctx context.Context, sc origin.SignedCall) (ledger.Receipt, error)
	NextNonce(caller types.AccountID) (uint64, error)
}

// Checkpoint persists the last slot a reward was issued for
type Checkpoint interface {
	GetLastRewardSlot() (uint64, bool, error)
	SetLastRewardSlot(slot uint64) error
}

// Feed mints one reward per finalized block, signed with its own system key
type Feed struct {
	mu         sync.Mutex
	policy     RewardPolicy
	submitter  Submitter
	checkpoint Checkpoint
	key        ed25519.PrivateKey
	id         types.AccountID
	pool       types.AccountID
	bus        *events.EventBus
}

// NewFeed creates a reward feed. An empty pool pays each block's author. bus may be nil.
func NewFeed(policy RewardPolicy, submitter Submitter, checkpoint Checkpoint, key ed25519.PrivateKey, pool types.AccountID, bus *events.EventBus) *Feed {
	return &Feed{
		policy:     policy,
		submitter:  submitter,
		checkpoint: checkpoint,
		key:        key,
		id:         types.AccountIDFromPublicKey(key.Public().(ed25519.PublicKey)),
		pool:       pool,
		bus:        bus,
	}
}

// ID returns the account the feed signs its mint calls as
func (f *Feed) ID() types.AccountID {
	return f.id
}

// OnFinalized mints the reward for blk. Slots at or below the checkpoint are
// skipped. The checkpoint moves before the mint is submitted, so a slot is
// never paid twice; a failed submit is returned and that reward is not retried.
func (f *Feed) OnFinalized(ctx context.Context, blk FinalizedBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	last, ok, err := f.checkpoint.GetLastRewardSlot()
	if err != nil {
		return fmt.Errorf("read reward checkpoint: %w", err)
	}
	if ok && blk.Slot <= last {
		logx.Debug("REWARD", fmt.Sprintf("Slot already rewarded | slot=%d | last=%d", blk.Slot, last))
		return nil
	}

	recipient := blk.Author
	if f.pool != "" {
		recipient = f.pool
	}
	if recipient == "" {
		return fmt.Errorf("%w: slot %d", ErrNoRecipient, blk.Slot)
	}

	if err := f.checkpoint.SetLastRewardSlot(blk.Slot); err != nil {
		return fmt.Errorf("persist reward checkpoint: %w", err)
	}

	amount := f.policy.Reward(blk.Slot)
	if amount == 0 {
		logx.Debug("REWARD", fmt.Sprintf("Zero reward | slot=%d", blk.Slot))
		return nil
	}

	nonce, err := f.submitter.NextNonce(f.id)
	if err != nil {
		return err
	}
	call := origin.Sign(origin.Call{Caller: f.id, Target: recipient, Amount: amount, Nonce: nonce}, f.key)
	receipt, err := f.submitter.Submit(ctx, call)
	if err != nil {
		return fmt.Errorf("reward for slot %d: %w", blk.Slot, err)
	}

	monitoring.RecordReward(blk.Slot)
	if f.bus != nil {
		f.bus.Publish(events.NewRewardPaid(blk.Slot, receipt))
	}
	logx.Info("REWARD", fmt.Sprintf("Block reward paid | slot=%d | recipient=%s | amount=%d", blk.Slot, recipient, receipt.Applied))
	return nil
}

// Run rewards every block from blocks until ctx is done or blocks is closed
func (f *Feed) Run(ctx context.Context, blocks <-chan FinalizedBlock) {
	for {
		select {
		case <-ctx.Done():
			return
		case blk, ok := <-blocks:
			if !ok {
				return
			}
			if err := f.OnFinalized(ctx, blk); err != nil {
				logx.Error("REWARD", "Failed to reward slot", blk.Slot, ":", err)
			}
		}
	}
}
