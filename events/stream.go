package events

import (
	"fmt"
	"net/http"
	"time"

	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

const streamKeepAlive = 15 * time.Second

// StreamEvent is the wire form of a LedgerEvent
type StreamEvent struct {
	Type        EventType       `json:"type"`
	Timestamp   int64           `json:"timestamp"`
	Account     types.AccountID `json:"account"`
	Caller      types.AccountID `json:"caller,omitempty"`
	Amount      uint64          `json:"amount,omitempty"`
	Applied     uint64          `json:"applied,omitempty"`
	Balance     uint64          `json:"balance,omitempty"`
	TotalSupply uint64          `json:"total_supply,omitempty"`
	Slot        uint64          `json:"slot,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}

func NewStreamEvent(event LedgerEvent) StreamEvent {
	out := StreamEvent{
		Type:      event.Type(),
		Timestamp: event.Timestamp().UnixMilli(),
		Account:   event.Account(),
	}
	switch e := event.(type) {
	case *MintApplied:
		r := e.Receipt()
		out.Caller = e.Caller()
		out.Amount = r.Requested
		out.Applied = r.Applied
		out.Balance = r.Balance
		out.TotalSupply = r.TotalSupply
	case *MintRejected:
		out.Caller = e.Caller()
		out.Amount = e.Amount()
		out.Reason = e.Reason()
	case *RewardPaid:
		r := e.Receipt()
		out.Slot = e.Slot()
		out.Amount = r.Requested
		out.Applied = r.Applied
		out.Balance = r.Balance
		out.TotalSupply = r.TotalSupply
	}
	return out
}

// StreamHandler serves bus events as server-sent events. The optional
// account query parameter limits the stream to one account.
type StreamHandler struct {
	bus *EventBus
}

func NewStreamHandler(bus *EventBus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	account := types.AccountID(r.URL.Query().Get("account"))

	id, ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return
			}
			if account != "" && event.Account() != account {
				continue
			}
			data, err := jsonx.Marshal(NewStreamEvent(event))
			if err != nil {
				logx.Error("EVENTSTREAM", "Failed to encode event:", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type(), data); err != nil {
				logx.Debug("EVENTSTREAM", fmt.Sprintf("Client went away | subscriber_id=%s | error=%v", id, err))
				return
			}
			flusher.Flush()
		}
	}
}
