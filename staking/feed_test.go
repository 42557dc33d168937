package staking

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web4asset/w4t/dispatch"
	"github.com/web4asset/w4t/events"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
)

type feedFixture struct {
	ledger *ledger.Ledger
	stores *store.Stores
	feed   *Feed
	bus    *events.EventBus
}

func newFeedFixture(t *testing.T, policy RewardPolicy, pool types.AccountID) *feedFixture {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	l, err := ledger.Open(stores.Balances, ledger.Saturating)
	require.NoError(t, err)

	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	bus := events.NewEventBus()
	d := dispatch.NewDispatcher(mint.NewTransition(l, nil), l, stores.Meta, bus, 0)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	t.Cleanup(func() {
		d.Stop()
		cancel()
		stores.Close()
	})

	return &feedFixture{
		ledger: l,
		stores: stores,
		feed:   NewFeed(policy, d, stores.Meta, key, pool, bus),
		bus:    bus,
	}
}

func TestFeed_PaysAuthor(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: DefaultBlockReward}, "")

	require.NoError(t, f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 1, Author: "author"}))
	require.NoError(t, f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 2, Author: "author"}))

	assert.Equal(t, 2*DefaultBlockReward, f.ledger.GetBalance("author"))
	assert.Equal(t, 2*DefaultBlockReward, f.ledger.GetTotalSupply())
	require.NoError(t, f.ledger.Audit())
}

func TestFeed_PaysPoolWhenConfigured(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: 7}, "pool")

	require.NoError(t, f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 1, Author: "author"}))

	assert.Equal(t, uint64(7), f.ledger.GetBalance("pool"))
	assert.Zero(t, f.ledger.GetBalance("author"))
}

func TestFeed_SkipsRewardedSlots(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: 5}, "")
	ctx := context.Background()

	require.NoError(t, f.feed.OnFinalized(ctx, FinalizedBlock{Slot: 0, Author: "a"}))
	require.NoError(t, f.feed.OnFinalized(ctx, FinalizedBlock{Slot: 0, Author: "a"}))
	require.NoError(t, f.feed.OnFinalized(ctx, FinalizedBlock{Slot: 3, Author: "a"}))
	require.NoError(t, f.feed.OnFinalized(ctx, FinalizedBlock{Slot: 2, Author: "a"}))

	assert.Equal(t, uint64(10), f.ledger.GetBalance("a"))

	last, ok, err := f.stores.Meta.GetLastRewardSlot()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), last)
}

func TestFeed_ZeroRewardMintsNothing(t *testing.T) {
	f := newFeedFixture(t, HalvingReward{Initial: 1, Interval: 1}, "")

	require.NoError(t, f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 5, Author: "a"}))

	assert.Zero(t, f.ledger.GetTotalSupply())
	next, err := f.stores.Meta.GetNonce(f.feed.ID())
	require.NoError(t, err)
	assert.Zero(t, next, "no call should have been submitted")
}

func TestFeed_RequiresRecipient(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: 5}, "")

	err := f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 1})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestFeed_PublishesRewardPaid(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: 5}, "")
	_, ch := f.bus.Subscribe()

	require.NoError(t, f.feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 9, Author: "a"}))

	timeout := time.After(time.Second)
	for {
		select {
		case e := <-ch:
			if paid, ok := e.(*events.RewardPaid); ok {
				assert.Equal(t, uint64(9), paid.Slot())
				assert.Equal(t, uint64(5), paid.Receipt().Applied)
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for RewardPaid")
		}
	}
}

func TestFeed_Run(t *testing.T) {
	f := newFeedFixture(t, FixedReward{Amount: 1}, "")
	blocks := make(chan FinalizedBlock, 3)
	blocks <- FinalizedBlock{Slot: 1, Author: "a"}
	blocks <- FinalizedBlock{Slot: 2, Author: "b"}
	blocks <- FinalizedBlock{Slot: 3, Author: "a"}
	close(blocks)

	f.feed.Run(context.Background(), blocks)

	assert.Equal(t, uint64(2), f.ledger.GetBalance("a"))
	assert.Equal(t, uint64(1), f.ledger.GetBalance("b"))
	assert.Equal(t, uint64(3), f.ledger.GetTotalSupply())
}

// rejectingSubmitter refuses every call
type rejectingSubmitter struct{}

func (rejectingSubmitter) Submit(context.Context, origin.SignedCall) (ledger.Receipt, error) {
	return ledger.Receipt{}, mint.ErrNotMinter
}

func (rejectingSubmitter) NextNonce(types.AccountID) (uint64, error) {
	return 1, nil
}

func TestFeed_FailedSubmitKeepsCheckpoint(t *testing.T) {
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	defer stores.Close()
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	feed := NewFeed(FixedReward{Amount: 1}, rejectingSubmitter{}, stores.Meta, key, "", nil)
	err = feed.OnFinalized(context.Background(), FinalizedBlock{Slot: 4, Author: "a"})
	assert.True(t, errors.Is(err, mint.ErrNotMinter))

	last, ok, err := stores.Meta.GetLastRewardSlot()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(4), last)
}

func TestSlotClock(t *testing.T) {
	st, err := NewStakeTable(Validator{Address: "v1", Stake: 1})
	require.NoError(t, err)
	clock := NewSlotClock(NewStakeWeightedScheduler(st, nil), time.Millisecond, 7)

	ctx, cancel := context.WithCancel(context.Background())
	blocks := clock.Run(ctx)
	first := <-blocks
	second := <-blocks
	cancel()

	assert.Equal(t, FinalizedBlock{Slot: 7, Author: "v1"}, first)
	assert.Equal(t, FinalizedBlock{Slot: 8, Author: "v1"}, second)
	for range blocks {
	}
}

func TestSlotClockWithoutValidators(t *testing.T) {
	st, err := NewStakeTable()
	require.NoError(t, err)
	clock := NewSlotClock(NewStakeWeightedScheduler(st, nil), time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	blocks := clock.Run(ctx)
	blk := <-blocks
	cancel()

	assert.Equal(t, FinalizedBlock{Slot: 0}, blk)
	for range blocks {
	}
}

func TestSlotClockRecoversPanic(t *testing.T) {
	// a clock without a scheduler panics on its first tick
	clock := NewSlotClock(nil, time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	blocks := clock.Run(ctx)

	select {
	case _, ok := <-blocks:
		assert.False(t, ok, "the channel is closed once the panic is recovered")
	case <-time.After(time.Second):
		t.Fatal("clock did not stop after panicking")
	}
}
