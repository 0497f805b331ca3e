package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/registry"
)

// connectionView is the JSON shape pushed on connections_snapshot:,
// trimmed to what the UI needs rather than the full domain.Connection.
type connectionView struct {
	Account        string `json:"account"`
	Role           string `json:"role"`
	Platform       string `json:"platform"`
	State          string `json:"state"`
	Broker         string `json:"broker,omitempty"`
	Balance        float64 `json:"balance"`
	Equity         float64 `json:"equity"`
	IsTradeAllowed bool    `json:"is_trade_allowed"`
}

// SnapshotBroadcaster periodically publishes the full connection table to
// the UI channel, per spec.md §4.11, so a newly opened dashboard doesn't
// have to wait for the next state change to see current connections.
type SnapshotBroadcaster struct {
	Registry *registry.Registry
	Channel  *Channel
	Interval time.Duration
	Log      zerolog.Logger
}

// NewSnapshotBroadcaster builds a broadcaster over reg, publishing on ch
// every interval.
func NewSnapshotBroadcaster(reg *registry.Registry, ch *Channel, interval time.Duration, log zerolog.Logger) *SnapshotBroadcaster {
	return &SnapshotBroadcaster{Registry: reg, Channel: ch, Interval: interval, Log: log.With().Str("component", "snapshot_broadcaster").Logger()}
}

// Run blocks, publishing on Interval until ctx is cancelled. Call
// PublishNow for an immediate, event-driven push (e.g. right after a
// Register).
func (b *SnapshotBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.PublishNow()
		}
	}
}

// PublishNow serializes the current connection table and publishes it
// immediately.
func (b *SnapshotBroadcaster) PublishNow() {
	conns := b.Registry.GetAll()
	views := make([]connectionView, len(conns))
	for i, c := range conns {
		views[i] = connectionView{
			Account: string(c.Account), Role: string(c.Role), Platform: string(c.Platform),
			State: string(c.State), Broker: c.Broker, Balance: c.Balance, Equity: c.Equity,
			IsTradeAllowed: c.IsTradeAllowed,
		}
	}

	data, err := json.Marshal(views)
	if err != nil {
		b.Log.Error().Err(err).Msg("marshal snapshot failed")
		return
	}
	b.Channel.Publish("connections_snapshot:" + string(data))
}
