package events

import (
	"testing"
	"time"

	"github.com/web4asset/w4t/ledger"
)

func TestEventBus(t *testing.T) {
	eventBus := NewEventBus()

	id, eventChan := eventBus.Subscribe()

	if count := eventBus.GetTotalSubscriptions(); count != 1 {
		t.Errorf("Expected 1 subscriber, got %d", count)
	}

	receipt := ledger.Receipt{Account: "alice", Requested: 100, Applied: 100, Balance: 100, TotalSupply: 100}
	eventBus.Publish(NewMintApplied("caller", receipt))

	select {
	case received := <-eventChan:
		if received.Type() != EventMintApplied {
			t.Errorf("Expected MintApplied, got %s", received.Type())
		}
		if received.Account() != "alice" {
			t.Errorf("Expected account alice, got %s", received.Account())
		}
		applied, ok := received.(*MintApplied)
		if !ok {
			t.Fatalf("Expected *MintApplied, got %T", received)
		}
		if applied.Receipt().TotalSupply != 100 {
			t.Errorf("Expected supply 100, got %d", applied.Receipt().TotalSupply)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for event")
	}

	if !eventBus.Unsubscribe(id) {
		t.Error("Expected unsubscribe to succeed")
	}
	if eventBus.HasSubscriber(id) {
		t.Error("Subscriber still registered after unsubscribe")
	}
	if _, open := <-eventChan; open {
		t.Error("Expected channel to be closed after unsubscribe")
	}
	if eventBus.Unsubscribe(id) {
		t.Error("Second unsubscribe should report false")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	eventBus := NewEventBus()
	_, ch := eventBus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(ch)+10; i++ {
			eventBus.Publish(NewMintRejected("caller", "alice", 1, "unauthorized"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if len(ch) != cap(ch) {
		t.Errorf("Expected full channel, got %d of %d", len(ch), cap(ch))
	}
}

func TestRewardPaidEvent(t *testing.T) {
	e := NewRewardPaid(42, ledger.Receipt{Account: "author", Applied: 10})
	if e.Type() != EventRewardPaid {
		t.Errorf("Expected RewardPaid, got %s", e.Type())
	}
	if e.Slot() != 42 || e.Account() != "author" {
		t.Errorf("Unexpected event contents: slot=%d account=%s", e.Slot(), e.Account())
	}
}
