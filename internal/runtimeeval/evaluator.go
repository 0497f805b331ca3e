// Package runtimeeval assembles a coherent snapshot from the connection
// registry and the trade-group repository and drives the pure status
// engine, per spec.md §4.6. It performs I/O (registry reads, repository
// reads); internal/status stays pure.
package runtimeeval

import (
	"context"
	"fmt"

	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/registry"
	"github.com/aristath/tradecopy-relay/internal/status"
)

// Evaluator reads the registry and repository to compute Master/Slave
// runtime status.
type Evaluator struct {
	Registry *registry.Registry
	Repo     domain.Repository
}

// New builds an Evaluator over reg and repo.
func New(reg *registry.Registry, repo domain.Repository) *Evaluator {
	return &Evaluator{Registry: reg, Repo: repo}
}

// MasterStatus reads the Master's group (for intent) and its registry
// connection, then calls status.EvaluateMaster.
func (e *Evaluator) MasterStatus(ctx context.Context, masterAccount domain.Account) (status.MasterResult, error) {
	group, err := e.Repo.GetTradeGroupByMaster(ctx, masterAccount)
	if err != nil {
		return status.MasterResult{}, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	intent := status.MasterIntent{}
	if group != nil {
		intent.WebUIEnabled = group.Enabled
	}

	conn, _ := e.Registry.Get(masterAccount, domain.RoleMaster)
	return status.EvaluateMaster(intent, conn.ToSnapshot()), nil
}

// SlaveBundleInput is the assembled context the config builder needs to
// build one Slave's config, per spec.md §4.6's target tuple.
type SlaveBundleInput struct {
	MasterAccount domain.Account
	GroupID       string
	SlaveAccount  domain.Account
	UserEnabled   bool
	Settings      domain.SlaveSettings
	SlaveResult   status.SlaveResult
	MasterEquity  float64
	SlaveEquity   float64
}

// SlaveBundle computes everything the config builder needs for one Slave
// across every Master it's bound to. Cluster size is typically 1 but the
// evaluator does not assume it (spec.md §4.6).
func (e *Evaluator) SlaveBundle(ctx context.Context, member domain.TradeGroupMember) (SlaveBundleInput, error) {
	groups, err := e.Repo.GroupsForSlave(ctx, member.SlaveAccount)
	if err != nil {
		return SlaveBundleInput{}, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	cluster := make([]status.MasterResult, 0, len(groups))
	var masterEquity float64
	for _, g := range groups {
		res, err := e.MasterStatus(ctx, g.MasterAccount)
		if err != nil {
			return SlaveBundleInput{}, err
		}
		cluster = append(cluster, res)
		if g.MasterAccount == member.MasterAccount {
			if conn, ok := e.Registry.Get(g.MasterAccount, domain.RoleMaster); ok {
				masterEquity = conn.Equity
			}
		}
	}

	slaveConn, _ := e.Registry.Get(member.SlaveAccount, domain.RoleSlave)
	result := status.EvaluateSlave(status.SlaveIntent{WebUIEnabled: member.Enabled}, slaveConn.ToSnapshot(), cluster)

	return SlaveBundleInput{
		MasterAccount: member.MasterAccount,
		GroupID:       member.GroupID,
		SlaveAccount:  member.SlaveAccount,
		UserEnabled:   member.Enabled,
		Settings:      member.Settings,
		SlaveResult:   result,
		MasterEquity:  masterEquity,
		SlaveEquity:   slaveConn.Equity,
	}, nil
}
