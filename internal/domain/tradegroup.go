package domain

// TradeGroup is one Master's group: its own settings plus the set of
// TradeGroupMember rows binding it to Slaves. Created by the admin surface
// (out of scope); the core only reads MasterSettings and mutates nothing
// on TradeGroup itself.
type TradeGroup struct {
	ID             string
	MasterAccount  Account
	Enabled        bool
	SymbolPrefix   string
	SymbolSuffix   string
	ConfigVersion  uint32
}

// SymbolMapping is one (source, target) override consulted after affix
// stripping and before the slave's own affixes are applied.
type SymbolMapping struct {
	Source string
	Target string
}

// LotMode selects how a Slave's lot size is derived from the Master's.
type LotMode string

const (
	LotModeMultiplier  LotMode = "Multiplier"
	LotModeMarginRatio LotMode = "MarginRatio"
)

// SyncMode controls how PositionSnapshot/SyncRequest reconciliation treats
// a Master-side position the Slave doesn't have yet.
type SyncMode string

const (
	SyncSkip        SyncMode = "Skip"
	SyncLimitOrder  SyncMode = "LimitOrder"
	SyncMarketOrder SyncMode = "MarketOrder"
)

// SlaveSettings is the per-link configuration embedded in a
// TradeGroupMember. Zero-value optional fields use the pointer-to-scalar
// idiom so "absent" is distinguishable from "explicitly zero".
type SlaveSettings struct {
	LotMode         LotMode
	LotMultiplier   *float64 // default 1.0 when absent
	ReverseTrade    bool
	SymbolPrefix    string
	SymbolSuffix    string
	SymbolMappings  []SymbolMapping

	AllowedSymbols []string
	BlockedSymbols []string
	AllowedMagics  []int64
	BlockedMagics  []int64

	SyncMode       SyncMode
	SourceLotMin   *float64
	SourceLotMax   *float64

	ConfigVersion uint32

	MaxRetries               int     // default 3
	MaxSignalDelayMs         int     // default 5000
	UsePendingForDelayed     bool
	MaxSlippage              float64
	CopyPendingOrders        bool
	LimitOrderExpiryMinutes  int
	MarketSyncMaxPips        float64
}

// Multiplier returns the effective lot multiplier, defaulting to 1.0.
func (s SlaveSettings) Multiplier() float64 {
	if s.LotMultiplier == nil {
		return 1.0
	}
	return *s.LotMultiplier
}

// EffectiveMaxRetries returns MaxRetries, defaulting to 3 when unset (zero).
func (s SlaveSettings) EffectiveMaxRetries() int {
	if s.MaxRetries <= 0 {
		return 3
	}
	return s.MaxRetries
}

// EffectiveMaxSignalDelayMs returns MaxSignalDelayMs, defaulting to 5000.
func (s SlaveSettings) EffectiveMaxSignalDelayMs() int {
	if s.MaxSignalDelayMs <= 0 {
		return 5000
	}
	return s.MaxSignalDelayMs
}

// TradeGroupMember is a (TradeGroup, Slave-account) pair: at most one per
// (master-account, slave-account). The core only mutates StoredStatus.
type TradeGroupMember struct {
	ID            string
	GroupID       string
	MasterAccount Account
	SlaveAccount  Account
	Enabled       bool // user-controlled intent
	Settings      SlaveSettings
	StoredStatus  RuntimeStatus
}
