package domain

import "context"

// Repository is the trade-group persistence port. Its implementation is out
// of scope per spec.md §1 ("Trade-group repository (port)" in the component
// table is interface-only); internal/repository/memory and
// internal/repository/sqlite each give the core something real to run
// against in tests and in the reference binary.
type Repository interface {
	// GetTradeGroupByMaster returns the group owned by masterAccount, or
	// (nil, nil) if the account has no group.
	GetTradeGroupByMaster(ctx context.Context, masterAccount Account) (*TradeGroup, error)

	// GetMember returns the member row for (masterAccount, slaveAccount),
	// or (nil, nil) if no such link exists.
	GetMember(ctx context.Context, masterAccount, slaveAccount Account) (*TradeGroupMember, error)

	// MembersOfGroup returns every member bound to groupID.
	MembersOfGroup(ctx context.Context, groupID string) ([]TradeGroupMember, error)

	// MembersForSlave returns every member row naming slaveAccount,
	// across every group it's bound to.
	MembersForSlave(ctx context.Context, slaveAccount Account) ([]TradeGroupMember, error)

	// GroupsForSlave returns every TradeGroup slaveAccount belongs to.
	GroupsForSlave(ctx context.Context, slaveAccount Account) ([]TradeGroup, error)

	// UpdateMemberStatus persists the member's freshly evaluated
	// RuntimeStatus. Config-version monotonicity (spec.md §3) is the
	// caller's responsibility; the repository writes whatever it's given.
	UpdateMemberStatus(ctx context.Context, memberID string, status RuntimeStatus) error

	// GlobalLogSettings returns the currently configured log-shipping
	// settings, or nil if none are configured.
	GlobalLogSettings(ctx context.Context) (*GlobalLogSettings, error)
}

// GlobalLogSettings is the admin-configured VictoriaLogs-style shipper
// config, pushed unchanged to every client on topic config/global
// (spec.md §4.8, §6.2).
type GlobalLogSettings struct {
	Enabled           bool
	Endpoint          string
	BatchSize         int32
	FlushIntervalSecs int32
	LogLevel          string
}
