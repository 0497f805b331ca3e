// Package copyengine implements the pure filter+transform applied to one
// trade signal for one (Master, Slave) link (spec.md §4.4).
package copyengine

import (
	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/symbols"
)

// ShouldCopy reports whether signal should be copied to member, per
// spec.md §4.4: false if the member is DISABLED, false on a blocked-symbol
// or blocked-magic hit, false if an allow-list is configured and the
// signal isn't on it (non-empty allow-list implies check; empty allow-list
// means allow-all, spec.md §8).
func ShouldCopy(signal domain.TradeSignal, member domain.TradeGroupMember) bool {
	if member.StoredStatus == domain.StatusDisabled {
		return false
	}

	s := member.Settings

	if signal.Symbol != nil {
		if contains(s.BlockedSymbols, *signal.Symbol) {
			return false
		}
		if len(s.AllowedSymbols) > 0 && !contains(s.AllowedSymbols, *signal.Symbol) {
			return false
		}
	}

	if signal.MagicNumber != nil {
		if containsInt64(s.BlockedMagics, *signal.MagicNumber) {
			return false
		}
		if len(s.AllowedMagics) > 0 && !containsInt64(s.AllowedMagics, *signal.MagicNumber) {
			return false
		}
	}

	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt64(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Transform applies the spec.md §4.4 pipeline and returns a new signal:
//  1. symbol conversion (if a symbol is present)
//  2. order-type reversal (Open only, when ReverseTrade is set)
//  3. lot sizing (Open only; Close/Modify pass lots and close_ratio through
//     unchanged — partial-close semantics, spec.md §9, must not scale
//     close_ratio by the lot multiplier)
//  4. lot-range filter (Open only)
func Transform(signal domain.TradeSignal, member domain.TradeGroupMember, converter symbols.Converter, masterEquity, slaveEquity float64) (domain.TradeSignal, error) {
	out := signal.Clone()
	s := member.Settings

	if out.Symbol != nil {
		converted := converter.Convert(*out.Symbol, s.SymbolMappings)
		out.Symbol = &converted
	}

	if s.ReverseTrade && out.Action == domain.ActionOpen && out.OrderType != nil {
		reversed := out.OrderType.Reversed()
		out.OrderType = &reversed
	}

	if out.Action == domain.ActionOpen && out.Lots != nil {
		lots := *out.Lots
		switch s.LotMode {
		case domain.LotModeMarginRatio:
			if masterEquity > 0 {
				lots = lots * (slaveEquity / masterEquity)
			}
		default: // Multiplier, including the zero-value LotMode.
			lots = lots * s.Multiplier()
		}
		out.Lots = &lots

		if (s.SourceLotMin != nil && lots < *s.SourceLotMin) ||
			(s.SourceLotMax != nil && lots > *s.SourceLotMax) {
			return domain.TradeSignal{}, domain.ErrLotOutOfRange
		}
	}

	return out, nil
}
