// Package registry implements the connection registry of spec.md §4.2: an
// in-memory map keyed by (account, role), guarded by a single whole-map
// readers-writer lock — sufficient because the inbound loop is serial, so
// writes are effectively single-writer.
package registry

import (
	"sync"
	"time"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// Registry tracks EA-connection liveness, auto-trading state, and
// timeouts.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.Key]*domain.Connection
	now   func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		conns: make(map[domain.Key]*domain.Connection),
		now:   time.Now,
	}
}

// RegisterInput is the subset of a Register/Heartbeat message the registry
// needs to create or refresh a record.
type RegisterInput struct {
	Account       domain.Account
	Role          domain.Role
	Platform      domain.Platform
	AccountNumber int64
	Broker        string
	Server        string
	AccountName   string
	Currency      string
	Leverage      int64
}

// Register inserts a record if absent; if one already exists it is left
// untouched (a subsequent Heartbeat updates live fields). Initial state is
// Registered, auto-trading false, balance/equity zero.
func (r *Registry) Register(in RegisterInput) {
	key := domain.Key{Account: in.Account, Role: in.Role}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[key]; exists {
		return
	}

	r.conns[key] = &domain.Connection{
		Account:       in.Account,
		Role:          in.Role,
		Platform:      in.Platform,
		AccountNumber: in.AccountNumber,
		Broker:        in.Broker,
		Server:        in.Server,
		AccountName:   in.AccountName,
		Currency:      in.Currency,
		Leverage:      in.Leverage,
		State:         domain.StateRegistered,
		ConnectedAt:   r.now(),
	}
}

// HeartbeatInput is the subset of a Heartbeat message applied on update.
type HeartbeatInput struct {
	Account        domain.Account
	Role           domain.Role
	Platform       domain.Platform
	Balance        float64
	Equity         float64
	IsTradeAllowed bool
}

// HeartbeatResult reports what the record looked like immediately before
// this heartbeat was applied, so a caller can evaluate spec.md §4.9's
// re-evaluation trigger ("auto-registration, or prior is-trade-allowed
// differs, or prior state was not Online") without a second registry read.
type HeartbeatResult struct {
	AutoRegistered      bool
	PriorState          domain.ConnState
	PriorIsTradeAllowed bool
}

// ShouldReevaluate reports whether res's transition warrants rebuilding
// and republishing config, per spec.md §4.9.
func (res HeartbeatResult) ShouldReevaluate(newIsTradeAllowed bool) bool {
	return res.AutoRegistered ||
		res.PriorIsTradeAllowed != newIsTradeAllowed ||
		res.PriorState != domain.StateOnline
}

// UpdateHeartbeat updates last-heartbeat, balance, equity, auto-trading
// flag and platform, and sets state Online. If the key is absent it
// auto-registers the record from the heartbeat. The returned
// HeartbeatResult describes the record's state immediately before this
// call.
func (r *Registry) UpdateHeartbeat(in HeartbeatInput) HeartbeatResult {
	key := domain.Key{Account: in.Account, Role: in.Role}

	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[key]
	var result HeartbeatResult
	if !exists {
		result.AutoRegistered = true
		conn = &domain.Connection{
			Account:     in.Account,
			Role:        in.Role,
			ConnectedAt: r.now(),
		}
		r.conns[key] = conn
	} else {
		result.PriorState = conn.State
		result.PriorIsTradeAllowed = conn.IsTradeAllowed
	}

	conn.Platform = in.Platform
	conn.Balance = in.Balance
	conn.Equity = in.Equity
	conn.IsTradeAllowed = in.IsTradeAllowed
	conn.LastHeartbeat = r.now()
	conn.State = domain.StateOnline

	return result
}

// Unregister sets the record Offline if present; metadata is preserved.
// No-op if the key is unknown.
func (r *Registry) Unregister(account domain.Account, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[domain.Key{Account: account, Role: role}]; ok {
		conn.State = domain.StateOffline
	}
}

// Get returns a snapshot copy of the record for (account, role), or false
// if unknown.
func (r *Registry) Get(account domain.Account, role domain.Role) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[domain.Key{Account: account, Role: role}]
	if !ok {
		return domain.Connection{}, false
	}
	return *conn, true
}

// GetAll returns a snapshot copy of every known connection.
func (r *Registry) GetAll() []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, *conn)
	}
	return out
}

// GetByAccount returns every role registered under account (a Master and a
// Slave connection may coexist for the same account id).
func (r *Registry) GetByAccount(account domain.Account) []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Connection
	for k, conn := range r.conns {
		if k.Account == account {
			out = append(out, *conn)
		}
	}
	return out
}

// CheckTimeouts sweeps every record whose state is Online or Registered and
// whose last heartbeat is older than timeout, sets it Timeout, and returns
// the (account, role) keys that transitioned.
func (r *Registry) CheckTimeouts(timeout time.Duration) []domain.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var out []domain.Key
	for key, conn := range r.conns {
		if conn.State != domain.StateOnline && conn.State != domain.StateRegistered {
			continue
		}
		if now.Sub(conn.LastHeartbeat) > timeout {
			conn.State = domain.StateTimeout
			out = append(out, key)
		}
	}
	return out
}
