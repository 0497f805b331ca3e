// Package status implements the pure projection from user intent + live
// connectivity to a RuntimeStatus plus warning codes (spec.md §4.5). None
// of it performs I/O; its callers (the runtime evaluator in
// internal/runtimeeval and the config builder in internal/configbuilder)
// supply the connection snapshots.
package status

import "github.com/aristath/tradecopy-relay/internal/domain"

// MasterIntent is the admin-controlled input to evaluateMaster: whether the
// Master's group is enabled.
type MasterIntent struct {
	WebUIEnabled bool
}

// MasterResult is evaluateMaster's output.
type MasterResult struct {
	Status   domain.RuntimeStatus
	Warnings []domain.WarningCode
}

// EvaluateMaster projects a Master's intent and connection snapshot into a
// status. Masters never return StatusEnabled: they are DISABLED or
// CONNECTED.
func EvaluateMaster(intent MasterIntent, conn domain.Snapshot) MasterResult {
	if !conn.IsOnline() {
		return MasterResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnMasterOffline}}
	}
	if !intent.WebUIEnabled {
		return MasterResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnMasterWebUIDisabled}}
	}
	if !conn.IsTradeAllowed {
		return MasterResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnMasterAutoTradingDisabled}}
	}
	return MasterResult{Status: domain.StatusConnected}
}

// SlaveIntent is the admin/user-controlled input to evaluateSlave.
type SlaveIntent struct {
	WebUIEnabled bool
}

// SlaveResult is evaluateSlave's output. AllowNewOrders is true iff Status
// is CONNECTED (spec.md §8 invariant 5).
type SlaveResult struct {
	Status         domain.RuntimeStatus
	Warnings       []domain.WarningCode
	AllowNewOrders bool
}

// PropagateMasterWarnings controls whether a degraded Master's own warning
// codes are appended to the Slave's warning list, per spec.md §9's open
// question. Left as a package variable (rather than a function parameter
// threaded through every caller) mirrors the teacher's style of a small
// number of package-level toggles read by pure functions. It defaults to
// true.
var PropagateMasterWarnings = true

// EvaluateSlave projects a Slave's intent, its own connection snapshot, and
// the evaluated status of every Master in its cluster into a status.
func EvaluateSlave(intent SlaveIntent, slaveConn domain.Snapshot, masterCluster []MasterResult) SlaveResult {
	if !slaveConn.IsOnline() {
		return SlaveResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnSlaveOffline}}
	}
	if !intent.WebUIEnabled {
		return SlaveResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnSlaveWebUIDisabled}}
	}
	if !slaveConn.IsTradeAllowed {
		return SlaveResult{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnSlaveAutoTradingDisabled}}
	}

	if len(masterCluster) == 0 {
		return SlaveResult{Status: domain.StatusEnabled, Warnings: []domain.WarningCode{domain.WarnNoMasterAssigned}}
	}

	anyConnected := false
	for _, m := range masterCluster {
		if m.Status == domain.StatusConnected {
			anyConnected = true
			break
		}
	}

	if anyConnected {
		return SlaveResult{Status: domain.StatusConnected, AllowNewOrders: true}
	}

	warnings := []domain.WarningCode{domain.WarnMasterClusterDegraded}
	if PropagateMasterWarnings {
		for _, m := range masterCluster {
			warnings = append(warnings, m.Warnings...)
		}
	}
	return SlaveResult{Status: domain.StatusEnabled, Warnings: warnings}
}
