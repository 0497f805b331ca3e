package sqlite

import (
	"encoding/json"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// settingsJSON mirrors domain.SlaveSettings field-for-field; kept distinct
// so the wire/storage shape can evolve independently of the domain type
// (e.g. a future settings_json schema migration doesn't touch domain).
type settingsJSON struct {
	LotMode        string                 `json:"lot_mode"`
	LotMultiplier  *float64               `json:"lot_multiplier,omitempty"`
	ReverseTrade   bool                   `json:"reverse_trade"`
	SymbolPrefix   string                 `json:"symbol_prefix"`
	SymbolSuffix   string                 `json:"symbol_suffix"`
	SymbolMappings []domain.SymbolMapping `json:"symbol_mappings,omitempty"`

	AllowedSymbols []string `json:"allowed_symbols,omitempty"`
	BlockedSymbols []string `json:"blocked_symbols,omitempty"`
	AllowedMagics  []int64  `json:"allowed_magics,omitempty"`
	BlockedMagics  []int64  `json:"blocked_magics,omitempty"`

	SyncMode     string   `json:"sync_mode"`
	SourceLotMin *float64 `json:"source_lot_min,omitempty"`
	SourceLotMax *float64 `json:"source_lot_max,omitempty"`

	ConfigVersion uint32 `json:"config_version"`

	MaxRetries              int     `json:"max_retries"`
	MaxSignalDelayMs        int     `json:"max_signal_delay_ms"`
	UsePendingForDelayed    bool    `json:"use_pending_for_delayed"`
	MaxSlippage             float64 `json:"max_slippage"`
	CopyPendingOrders       bool    `json:"copy_pending_orders"`
	LimitOrderExpiryMinutes int     `json:"limit_order_expiry_minutes"`
	MarketSyncMaxPips       float64 `json:"market_sync_max_pips"`
}

func encodeSettings(s domain.SlaveSettings) (string, error) {
	j := settingsJSON{
		LotMode: string(s.LotMode), LotMultiplier: s.LotMultiplier, ReverseTrade: s.ReverseTrade,
		SymbolPrefix: s.SymbolPrefix, SymbolSuffix: s.SymbolSuffix, SymbolMappings: s.SymbolMappings,
		AllowedSymbols: s.AllowedSymbols, BlockedSymbols: s.BlockedSymbols,
		AllowedMagics: s.AllowedMagics, BlockedMagics: s.BlockedMagics,
		SyncMode: string(s.SyncMode), SourceLotMin: s.SourceLotMin, SourceLotMax: s.SourceLotMax,
		ConfigVersion: s.ConfigVersion,
		MaxRetries:    s.MaxRetries, MaxSignalDelayMs: s.MaxSignalDelayMs,
		UsePendingForDelayed: s.UsePendingForDelayed, MaxSlippage: s.MaxSlippage,
		CopyPendingOrders: s.CopyPendingOrders, LimitOrderExpiryMinutes: s.LimitOrderExpiryMinutes,
		MarketSyncMaxPips: s.MarketSyncMaxPips,
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func decodeSettings(raw string) (domain.SlaveSettings, error) {
	var j settingsJSON
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		return domain.SlaveSettings{}, err
	}
	return domain.SlaveSettings{
		LotMode: domain.LotMode(j.LotMode), LotMultiplier: j.LotMultiplier, ReverseTrade: j.ReverseTrade,
		SymbolPrefix: j.SymbolPrefix, SymbolSuffix: j.SymbolSuffix, SymbolMappings: j.SymbolMappings,
		AllowedSymbols: j.AllowedSymbols, BlockedSymbols: j.BlockedSymbols,
		AllowedMagics: j.AllowedMagics, BlockedMagics: j.BlockedMagics,
		SyncMode: domain.SyncMode(j.SyncMode), SourceLotMin: j.SourceLotMin, SourceLotMax: j.SourceLotMax,
		ConfigVersion: j.ConfigVersion,
		MaxRetries:    j.MaxRetries, MaxSignalDelayMs: j.MaxSignalDelayMs,
		UsePendingForDelayed: j.UsePendingForDelayed, MaxSlippage: j.MaxSlippage,
		CopyPendingOrders: j.CopyPendingOrders, LimitOrderExpiryMinutes: j.LimitOrderExpiryMinutes,
		MarketSyncMaxPips: j.MarketSyncMaxPips,
	}, nil
}
