// Package configbuilder implements spec.md §4.7's pure MasterConfig /
// SlaveConfig assembly: no I/O, no hidden state.
package configbuilder

import (
	"time"

	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/status"
	"github.com/aristath/tradecopy-relay/internal/wire"
)

// MasterContext is the input to BuildMasterConfig.
type MasterContext struct {
	AccountID string
	Intent    status.MasterIntent
	Conn      domain.Snapshot
	Prefix    string
	Suffix    string
	Version   uint32
	Timestamp time.Time
}

// BuildMasterConfig runs status.EvaluateMaster and returns the outbound
// wire message alongside the evaluated result (so the caller can persist
// the status and decide whether to cascade without re-evaluating).
func BuildMasterConfig(ctx MasterContext) (wire.MasterConfigMsg, status.MasterResult) {
	result := status.EvaluateMaster(ctx.Intent, ctx.Conn)

	msg := wire.MasterConfigMsg{
		AccountID:     string(ctx.AccountID),
		Status:        int32(result.Status),
		ConfigVersion: ctx.Version,
		Timestamp:     ctx.Timestamp.UTC().Format(time.RFC3339),
		WarningCodes:  domain.WarningStrings(result.Warnings),
	}
	if ctx.Prefix != "" {
		p := ctx.Prefix
		msg.SymbolPrefix = &p
	}
	if ctx.Suffix != "" {
		s := ctx.Suffix
		msg.SymbolSuffix = &s
	}
	return msg, result
}

// SlaveContext is the input to BuildSlaveConfig.
type SlaveContext struct {
	SlaveAccount  string
	MasterAccount string
	TradeGroupID  string
	Intent        status.SlaveIntent
	SlaveConn     domain.Snapshot
	MasterCluster []status.MasterResult
	Settings      domain.SlaveSettings
	MasterEquity  float64
	Timestamp     time.Time
}

// BuildSlaveConfig runs status.EvaluateSlave and returns the full outbound
// SlaveConfig, carrying every SlaveSettings field plus the derived status,
// allow_new_orders, warning_codes and master_equity.
func BuildSlaveConfig(ctx SlaveContext) (wire.SlaveConfigMsg, status.SlaveResult) {
	result := status.EvaluateSlave(ctx.Intent, ctx.SlaveConn, ctx.MasterCluster)
	return assembleSlaveConfig(ctx, result), result
}

// BuildSlaveConfigWithResult assembles the outbound SlaveConfig from a
// status.SlaveResult the caller already computed (e.g. runtimeeval.
// Evaluator.SlaveBundle), instead of re-running status.EvaluateSlave.
// Used where the cluster evaluation happened upstream and recomputing it
// here would require re-reading every Master's connection state.
func BuildSlaveConfigWithResult(ctx SlaveContext, result status.SlaveResult) wire.SlaveConfigMsg {
	return assembleSlaveConfig(ctx, result)
}

func assembleSlaveConfig(ctx SlaveContext, result status.SlaveResult) wire.SlaveConfigMsg {
	s := ctx.Settings

	mappings := make([]wire.WireSymbolMap, len(s.SymbolMappings))
	for i, m := range s.SymbolMappings {
		mappings[i] = wire.WireSymbolMap{Source: m.Source, Target: m.Target}
	}

	msg := wire.SlaveConfigMsg{
		AccountID:     ctx.SlaveAccount,
		MasterAccount: ctx.MasterAccount,
		TradeGroupID:  ctx.TradeGroupID,
		Timestamp:     ctx.Timestamp.UTC().Format(time.RFC3339),

		LotMode:        string(s.LotMode),
		LotMultiplier:  s.LotMultiplier,
		ReverseTrade:   s.ReverseTrade,
		SymbolPrefix:   s.SymbolPrefix,
		SymbolSuffix:   s.SymbolSuffix,
		SymbolMappings: mappings,

		AllowedSymbols: s.AllowedSymbols,
		BlockedSymbols: s.BlockedSymbols,
		AllowedMagics:  s.AllowedMagics,
		BlockedMagics:  s.BlockedMagics,

		SyncMode:     string(s.SyncMode),
		SourceLotMin: s.SourceLotMin,
		SourceLotMax: s.SourceLotMax,

		ConfigVersion: s.ConfigVersion,

		MaxRetries:              s.EffectiveMaxRetries(),
		MaxSignalDelayMs:        s.EffectiveMaxSignalDelayMs(),
		UsePendingForDelayed:    s.UsePendingForDelayed,
		MaxSlippage:             s.MaxSlippage,
		CopyPendingOrders:       s.CopyPendingOrders,
		LimitOrderExpiryMinutes: s.LimitOrderExpiryMinutes,
		MarketSyncMaxPips:       s.MarketSyncMaxPips,

		Status:         int32(result.Status),
		AllowNewOrders: result.AllowNewOrders,
		WarningCodes:   domain.WarningStrings(result.Warnings),
	}
	if ctx.MasterEquity != 0 {
		e := ctx.MasterEquity
		msg.MasterEquity = &e
	}
	return msg
}
