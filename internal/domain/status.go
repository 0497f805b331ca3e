package domain

import "sort"

// RuntimeStatus is the three-valued projection of user intent + live
// connectivity. Masters never take value 1 (ENABLED): a Master is either
// DISABLED or CONNECTED.
type RuntimeStatus int

const (
	StatusDisabled  RuntimeStatus = 0
	StatusEnabled   RuntimeStatus = 1
	StatusConnected RuntimeStatus = 2
)

// WarningCode is an enumerated reason a RuntimeStatus is degraded. The
// numeric Priority orders the display list lowest-first.
type WarningCode struct {
	Code     string
	Priority int
}

var (
	WarnSlaveWebUIDisabled       = WarningCode{"slave_web_ui_disabled", 10}
	WarnSlaveOffline             = WarningCode{"slave_offline", 20}
	WarnSlaveAutoTradingDisabled = WarningCode{"slave_auto_trading_disabled", 30}
	WarnMasterWebUIDisabled      = WarningCode{"master_web_ui_disabled", 40}
	WarnMasterOffline            = WarningCode{"master_offline", 50}
	WarnMasterAutoTradingDisabled = WarningCode{"master_auto_trading_disabled", 60}
	WarnNoMasterAssigned         = WarningCode{"no_master_assigned", 70}
	WarnMasterClusterDegraded    = WarningCode{"master_cluster_degraded", 80}
)

// SortWarnings orders codes ascending by priority, stable for equal
// priorities so repeated evaluations are deterministic.
func SortWarnings(codes []WarningCode) []WarningCode {
	out := make([]WarningCode, len(codes))
	copy(out, codes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// DedupeWarnings drops repeated codes, keeping the first (lowest-priority)
// occurrence's position before the caller sorts.
func DedupeWarnings(codes []WarningCode) []WarningCode {
	seen := make(map[string]bool, len(codes))
	out := make([]WarningCode, 0, len(codes))
	for _, c := range codes {
		if seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		out = append(out, c)
	}
	return out
}

// WarningStrings renders the wire form: snake_case code strings, sorted.
func WarningStrings(codes []WarningCode) []string {
	sorted := SortWarnings(DedupeWarnings(codes))
	out := make([]string, len(sorted))
	for i, c := range sorted {
		out[i] = c.Code
	}
	return out
}
