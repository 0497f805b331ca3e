package domain

import "time"

// ConnState is the lifecycle state of one EA-connection.
type ConnState string

const (
	StateRegistered ConnState = "Registered"
	StateOnline     ConnState = "Online"
	StateOffline    ConnState = "Offline"
	StateTimeout    ConnState = "Timeout"
)

// Connection is the registry's record for one (Account, Role) pair. It is
// created on the first Register or Heartbeat and never destroyed while the
// process runs; Offline and Timeout are sticky states that preserve the
// last-known metadata rather than erasing the row.
type Connection struct {
	Account Account
	Role    Role

	Platform        Platform
	AccountNumber   int64
	Broker          string
	Server          string
	AccountName     string
	Currency        string
	Leverage        int64
	Balance         float64
	Equity          float64
	IsTradeAllowed  bool
	LastHeartbeat   time.Time
	ConnectedAt     time.Time
	State           ConnState
}

// Snapshot is the read-only view the status engine and config builder
// consume; it never exposes mutation methods so pure functions can't
// accidentally write through it.
type Snapshot struct {
	Account        Account
	Role           Role
	State          ConnState
	IsTradeAllowed bool
	Balance        float64
	Equity         float64
}

// ToSnapshot projects a Connection into the read-only shape used by the
// status engine.
func (c Connection) ToSnapshot() Snapshot {
	return Snapshot{
		Account:        c.Account,
		Role:           c.Role,
		State:          c.State,
		IsTradeAllowed: c.IsTradeAllowed,
		Balance:        c.Balance,
		Equity:         c.Equity,
	}
}

// IsOnline reports whether the connection's state is the one live state the
// status engine treats as connected.
func (s Snapshot) IsOnline() bool {
	return s.State == StateOnline
}
