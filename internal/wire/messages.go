// Package wire implements the binary codec described in spec.md §4.1 and
// §6.2: tagged MessagePack maps, discriminated by a message_type string
// field (or, absent that, the presence of an action field for
// TradeSignal).
package wire

// Kind identifies a decoded message's variant.
type Kind string

const (
	KindHeartbeat         Kind = "Heartbeat"
	KindRegister          Kind = "Register"
	KindUnregister        Kind = "Unregister"
	KindRequestConfig     Kind = "RequestConfig"
	KindPositionSnapshot  Kind = "PositionSnapshot"
	KindSyncRequest       Kind = "SyncRequest"
	KindTradeSignal       Kind = "TradeSignal"
	KindUnknown           Kind = ""
)

// EAType mirrors domain.Role on the wire ("Master"/"Slave"); kept as its
// own string type here so the wire package has no dependency on internal
// validation helpers beyond round-trip shape.
type EAType string

// HeartbeatMsg is the wire shape of spec.md §6.2's Heartbeat message.
type HeartbeatMsg struct {
	MessageType    string  `msgpack:"message_type"`
	AccountID      string  `msgpack:"account_id"`
	Balance        float64 `msgpack:"balance"`
	Equity         float64 `msgpack:"equity"`
	OpenPositions  int32   `msgpack:"open_positions"`
	Timestamp      string  `msgpack:"timestamp"`
	Version        string  `msgpack:"version"`
	EAType         string  `msgpack:"ea_type"`
	Platform       string  `msgpack:"platform"`
	AccountNumber  int64   `msgpack:"account_number"`
	Broker         string  `msgpack:"broker"`
	AccountName    string  `msgpack:"account_name"`
	Server         string  `msgpack:"server"`
	Currency       string  `msgpack:"currency"`
	Leverage       int64   `msgpack:"leverage"`
	IsTradeAllowed bool    `msgpack:"is_trade_allowed"`
	SymbolPrefix   *string `msgpack:"symbol_prefix,omitempty"`
	SymbolSuffix   *string `msgpack:"symbol_suffix,omitempty"`
	SymbolMap      *string `msgpack:"symbol_map,omitempty"`
}

// PermissiveHeartbeat is the fallback shape the codec tries when a strict
// HeartbeatMsg decode fails, per spec.md §4.1's "older clients" edge case:
// it extracts only account_id so the registry can still record liveness.
type PermissiveHeartbeat struct {
	AccountID string `msgpack:"account_id"`
}

// RegisterMsg is the wire shape of spec.md §6.2's Register message: the
// same identity fields as Heartbeat, without balance/equity.
type RegisterMsg struct {
	MessageType   string `msgpack:"message_type"`
	AccountID     string `msgpack:"account_id"`
	Timestamp     string `msgpack:"timestamp"`
	EAType        string `msgpack:"ea_type"`
	Platform      string `msgpack:"platform"`
	AccountNumber int64  `msgpack:"account_number"`
	Broker        string `msgpack:"broker"`
	AccountName   string `msgpack:"account_name"`
	Server        string `msgpack:"server"`
	Currency      string `msgpack:"currency"`
	Leverage      int64  `msgpack:"leverage"`
}

// UnregisterMsg is the wire shape of spec.md §6.2's Unregister message.
type UnregisterMsg struct {
	MessageType string  `msgpack:"message_type"`
	AccountID   string  `msgpack:"account_id"`
	Timestamp   string  `msgpack:"timestamp"`
	EAType      *string `msgpack:"ea_type,omitempty"`
}

// RequestConfigMsg is the wire shape of spec.md §6.2's RequestConfig message.
type RequestConfigMsg struct {
	MessageType string `msgpack:"message_type"`
	AccountID   string `msgpack:"account_id"`
	Timestamp   string `msgpack:"timestamp"`
	EAType      string `msgpack:"ea_type"`
}

// PositionSnapshotMsg/SyncRequestMsg share a shape: the reporting Master
// account plus its positions, which every Slave of that Master's group
// reconciles against.
type PositionSnapshotMsg struct {
	MessageType string           `msgpack:"message_type"`
	AccountID   string           `msgpack:"account_id"`
	Timestamp   string           `msgpack:"timestamp"`
	Positions   []WirePosition   `msgpack:"positions"`
}

type SyncRequestMsg struct {
	MessageType string         `msgpack:"message_type"`
	AccountID   string         `msgpack:"account_id"`
	Timestamp   string         `msgpack:"timestamp"`
	Positions   []WirePosition `msgpack:"positions"`
}

// WirePosition is one Master-side open position or pending order reported
// for reconciliation.
type WirePosition struct {
	MasterTicket int64   `msgpack:"master_ticket"`
	Symbol       string  `msgpack:"symbol"`
	OrderType    string  `msgpack:"order_type"`
	Lots         float64 `msgpack:"lots"`
	OpenPrice    float64 `msgpack:"open_price"`
	IsPending    bool    `msgpack:"is_pending"`
}

// TradeSignalMsg is the wire shape of spec.md §6.2's TradeSignal message.
type TradeSignalMsg struct {
	Action        string   `msgpack:"action"`
	Ticket        int64    `msgpack:"ticket"`
	Symbol        *string  `msgpack:"symbol,omitempty"`
	OrderType     *string  `msgpack:"order_type,omitempty"`
	Lots          *float64 `msgpack:"lots,omitempty"`
	OpenPrice     *float64 `msgpack:"open_price,omitempty"`
	StopLoss      *float64 `msgpack:"stop_loss,omitempty"`
	TakeProfit    *float64 `msgpack:"take_profit,omitempty"`
	MagicNumber   *int64   `msgpack:"magic_number,omitempty"`
	Comment       *string  `msgpack:"comment,omitempty"`
	Timestamp         string   `msgpack:"timestamp"`
	SourceAccount     string   `msgpack:"source_account"`
	CloseRatio        *float64 `msgpack:"close_ratio,omitempty"`
	SyncExpiryMinutes *int     `msgpack:"sync_expiry_minutes,omitempty"`
}

// MasterConfigMsg is the outbound shape of spec.md §6.2's MasterConfig.
type MasterConfigMsg struct {
	AccountID     string   `msgpack:"account_id"`
	Status        int32    `msgpack:"status"`
	SymbolPrefix  *string  `msgpack:"symbol_prefix,omitempty"`
	SymbolSuffix  *string  `msgpack:"symbol_suffix,omitempty"`
	ConfigVersion uint32   `msgpack:"config_version"`
	Timestamp     string   `msgpack:"timestamp"`
	WarningCodes  []string `msgpack:"warning_codes"`
}

// SlaveConfigMsg is the outbound shape of spec.md §6.2's SlaveConfig.
type SlaveConfigMsg struct {
	AccountID     string  `msgpack:"account_id"`
	MasterAccount string  `msgpack:"master_account"`
	TradeGroupID  string  `msgpack:"trade_group_id"`
	Timestamp     string  `msgpack:"timestamp"`

	LotMode        string          `msgpack:"lot_mode"`
	LotMultiplier  *float64        `msgpack:"lot_multiplier,omitempty"`
	ReverseTrade   bool            `msgpack:"reverse_trade"`
	SymbolPrefix   string          `msgpack:"symbol_prefix"`
	SymbolSuffix   string          `msgpack:"symbol_suffix"`
	SymbolMappings []WireSymbolMap `msgpack:"symbol_mappings"`

	AllowedSymbols []string `msgpack:"allowed_symbols"`
	BlockedSymbols []string `msgpack:"blocked_symbols"`
	AllowedMagics  []int64  `msgpack:"allowed_magics"`
	BlockedMagics  []int64  `msgpack:"blocked_magics"`

	SyncMode     string   `msgpack:"sync_mode"`
	SourceLotMin *float64 `msgpack:"source_lot_min,omitempty"`
	SourceLotMax *float64 `msgpack:"source_lot_max,omitempty"`

	ConfigVersion uint32 `msgpack:"config_version"`

	MaxRetries              int     `msgpack:"max_retries"`
	MaxSignalDelayMs        int     `msgpack:"max_signal_delay_ms"`
	UsePendingForDelayed    bool    `msgpack:"use_pending_order_for_delayed"`
	MaxSlippage             float64 `msgpack:"max_slippage"`
	CopyPendingOrders       bool    `msgpack:"copy_pending_orders"`
	LimitOrderExpiryMinutes int     `msgpack:"limit_order_expiry_minutes"`
	MarketSyncMaxPips       float64 `msgpack:"market_sync_max_pips"`

	Status          int32    `msgpack:"status"`
	AllowNewOrders  bool     `msgpack:"allow_new_orders"`
	WarningCodes    []string `msgpack:"warning_codes"`
	MasterEquity    *float64 `msgpack:"master_equity,omitempty"`
}

// WireSymbolMap is one (source, target) mapping entry on the wire.
type WireSymbolMap struct {
	Source string `msgpack:"source"`
	Target string `msgpack:"target"`
}

// GlobalLogSettingsMsg is the outbound shape of spec.md §6.2's GlobalLogSettings.
type GlobalLogSettingsMsg struct {
	Enabled           bool   `msgpack:"enabled"`
	Endpoint          string `msgpack:"endpoint"`
	BatchSize         int32  `msgpack:"batch_size"`
	FlushIntervalSecs int32  `msgpack:"flush_interval_secs"`
	LogLevel          string `msgpack:"log_level"`
}
