// Package disconnect implements the disconnection cascade of spec.md
// §4.10: when a Master or Slave drops (explicit Unregister or a timeout
// sweep), every bound link's config must be recomputed and re-pushed so
// downstream clients pick up the new status promptly rather than at
// their next heartbeat-driven poll.
package disconnect

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/broadcast"
	"github.com/aristath/tradecopy-relay/internal/configbuilder"
	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/publisher"
	"github.com/aristath/tradecopy-relay/internal/registry"
	"github.com/aristath/tradecopy-relay/internal/runtimeeval"
	"github.com/aristath/tradecopy-relay/internal/status"
)

// Service cascades a dropped connection to every dependent client.
type Service struct {
	Registry  *registry.Registry
	Repo      domain.Repository
	Evaluator *runtimeeval.Evaluator
	Publisher *publisher.Publisher
	Channel   *broadcast.Channel
	Log       zerolog.Logger
}

// New builds a disconnect Service over its collaborators.
func New(reg *registry.Registry, repo domain.Repository, pub *publisher.Publisher, ch *broadcast.Channel, log zerolog.Logger) *Service {
	return &Service{
		Registry:  reg,
		Repo:      repo,
		Evaluator: runtimeeval.New(reg, repo),
		Publisher: pub,
		Channel:   ch,
		Log:       log.With().Str("component", "disconnect").Logger(),
	}
}

// HandleMasterOffline recomputes and re-pushes MasterConfig for
// masterAccount, then recomputes every bound Slave's SlaveConfig, since a
// Master going offline changes the cluster-degraded evaluation for each
// of them (spec.md §4.5, §4.10).
func (s *Service) HandleMasterOffline(ctx context.Context, masterAccount domain.Account) {
	s.Registry.Unregister(masterAccount, domain.RoleMaster)
	s.Channel.Publish(fmt.Sprintf("ea_disconnected:%s:%s", masterAccount, domain.RoleMaster))

	group, err := s.Repo.GetTradeGroupByMaster(ctx, masterAccount)
	if err != nil {
		s.Log.Warn().Err(err).Str("master", string(masterAccount)).Msg("cascade: load group failed")
		return
	}
	if group == nil {
		return
	}

	msg, _ := configbuilder.BuildMasterConfig(configbuilder.MasterContext{
		AccountID: string(masterAccount),
		Intent:    status.MasterIntent{WebUIEnabled: group.Enabled},
		Conn:      s.snapshot(masterAccount, domain.RoleMaster),
		Prefix:    group.SymbolPrefix,
		Suffix:    group.SymbolSuffix,
		Version:   group.ConfigVersion,
		Timestamp: time.Now(),
	})
	if err := s.Publisher.Enqueue(publisher.ConfigTopic(masterAccount), msg); err != nil {
		s.Log.Warn().Err(err).Str("master", string(masterAccount)).Msg("cascade: publish master config failed")
	}

	members, err := s.Repo.MembersOfGroup(ctx, group.ID)
	if err != nil {
		s.Log.Warn().Err(err).Str("group", group.ID).Msg("cascade: load members failed")
		return
	}
	for _, member := range members {
		s.pushSlaveConfig(ctx, member)
	}
}

// HandleSlaveOffline records the Slave as offline, broadcasts the
// disconnect event, then re-evaluates every member row naming the Slave,
// persisting and republishing each one's SlaveConfig.
func (s *Service) HandleSlaveOffline(ctx context.Context, slaveAccount domain.Account) {
	s.Registry.Unregister(slaveAccount, domain.RoleSlave)
	s.Channel.Publish(fmt.Sprintf("ea_disconnected:%s:%s", slaveAccount, domain.RoleSlave))

	members, err := s.Repo.MembersForSlave(ctx, slaveAccount)
	if err != nil {
		s.Log.Warn().Err(err).Str("slave", string(slaveAccount)).Msg("cascade: load slave members failed")
		return
	}
	for _, member := range members {
		s.pushSlaveConfig(ctx, member)
	}
}

func (s *Service) pushSlaveConfig(ctx context.Context, member domain.TradeGroupMember) {
	bundle, err := s.Evaluator.SlaveBundle(ctx, member)
	if err != nil {
		s.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("cascade: slave bundle failed")
		return
	}

	msg := configbuilder.BuildSlaveConfigWithResult(configbuilder.SlaveContext{
		SlaveAccount:  string(bundle.SlaveAccount),
		MasterAccount: string(bundle.MasterAccount),
		TradeGroupID:  bundle.GroupID,
		Intent:        status.SlaveIntent{WebUIEnabled: bundle.UserEnabled},
		Settings:      bundle.Settings,
		MasterEquity:  bundle.MasterEquity,
		Timestamp:     time.Now(),
	}, bundle.SlaveResult)

	if err := s.Repo.UpdateMemberStatus(ctx, member.ID, bundle.SlaveResult.Status); err != nil {
		s.Log.Warn().Err(err).Str("member", member.ID).Msg("cascade: persist member status failed")
	}
	if err := s.Publisher.Enqueue(publisher.ConfigTopic(member.SlaveAccount), msg); err != nil {
		s.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("cascade: publish slave config failed")
	}
}

func (s *Service) snapshot(account domain.Account, role domain.Role) domain.Snapshot {
	conn, _ := s.Registry.Get(account, role)
	return conn.ToSnapshot()
}
