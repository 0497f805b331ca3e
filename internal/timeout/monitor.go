// Package timeout implements the periodic timeout sweep of spec.md
// §4.13: any connection whose last heartbeat is older than the
// configured window is marked Timeout and cascaded through the
// disconnection service exactly like an explicit Unregister.
package timeout

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/disconnect"
	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/registry"
)

// Monitor periodically sweeps the registry for stale connections.
type Monitor struct {
	Registry   *registry.Registry
	Disconnect *disconnect.Service
	Timeout    time.Duration
	Interval   time.Duration
	Log        zerolog.Logger
}

// New builds a Monitor. heartbeatTimeout is how old a LastHeartbeat may
// be before a connection is swept; sweepInterval is how often the sweep
// runs.
func New(reg *registry.Registry, svc *disconnect.Service, heartbeatTimeout, sweepInterval time.Duration, log zerolog.Logger) *Monitor {
	return &Monitor{
		Registry:   reg,
		Disconnect: svc,
		Timeout:    heartbeatTimeout,
		Interval:   sweepInterval,
		Log:        log.With().Str("component", "timeout").Logger(),
	}
}

// Run blocks, sweeping on Interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Monitor) sweep(ctx context.Context) {
	stale := m.Registry.CheckTimeouts(m.Timeout)
	for _, key := range stale {
		m.Log.Info().Str("account", string(key.Account)).Str("role", string(key.Role)).Msg("connection timed out")
		if key.Role == domain.RoleMaster {
			m.Disconnect.HandleMasterOffline(ctx, key.Account)
		} else {
			m.Disconnect.HandleSlaveOffline(ctx, key.Account)
		}
	}
}
