// Package handlers implements the per-Kind message handlers of spec.md
// §4.9: the glue between the wire codec, the registry, the runtime
// evaluator, the copy engine and the publisher. Each handler recovers
// from its own errors locally per spec.md §7; none may propagate out of
// the inbound loop.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tradecopy-relay/internal/broadcast"
	"github.com/aristath/tradecopy-relay/internal/configbuilder"
	"github.com/aristath/tradecopy-relay/internal/copyengine"
	"github.com/aristath/tradecopy-relay/internal/disconnect"
	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/publisher"
	"github.com/aristath/tradecopy-relay/internal/registry"
	"github.com/aristath/tradecopy-relay/internal/runtimeeval"
	"github.com/aristath/tradecopy-relay/internal/status"
	"github.com/aristath/tradecopy-relay/internal/symbols"
	"github.com/aristath/tradecopy-relay/internal/ticketmap"
	"github.com/aristath/tradecopy-relay/internal/wire"
)

// Dispatcher wires the registry, repository, runtime evaluator, copy
// engine and publisher into one call per decoded inbound frame.
type Dispatcher struct {
	Registry   *registry.Registry
	Repo       domain.Repository
	Evaluator  *runtimeeval.Evaluator
	Publisher  *publisher.Publisher
	Channel    *broadcast.Channel
	Disconnect *disconnect.Service
	TicketMap  *ticketmap.Store
	Log        zerolog.Logger
}

// New builds a Dispatcher over its collaborators.
func New(reg *registry.Registry, repo domain.Repository, pub *publisher.Publisher, ch *broadcast.Channel, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Registry:   reg,
		Repo:       repo,
		Evaluator:  runtimeeval.New(reg, repo),
		Publisher:  pub,
		Channel:    ch,
		Disconnect: disconnect.New(reg, repo, pub, ch, log),
		TicketMap:  ticketmap.NewStore(),
		Log:        log.With().Str("component", "handlers").Logger(),
	}
}

// Dispatch routes a decoded frame to its handler. It never returns an
// error that the caller must propagate; failures are logged and
// swallowed so one malformed or rejected message cannot take down the
// connection's read loop (spec.md §7).
func (d *Dispatcher) Dispatch(ctx context.Context, msg wire.Decoded) {
	var err error
	switch msg.Kind {
	case wire.KindHeartbeat:
		err = d.handleHeartbeat(ctx, *msg.Heartbeat)
	case wire.KindRegister:
		err = d.handleRegister(ctx, *msg.Register)
	case wire.KindUnregister:
		err = d.handleUnregister(ctx, *msg.Unregister)
	case wire.KindRequestConfig:
		err = d.handleRequestConfig(ctx, *msg.RequestConfig)
	case wire.KindTradeSignal:
		err = d.handleTradeSignal(ctx, *msg.TradeSignal)
	case wire.KindPositionSnapshot:
		err = d.handleReconcile(ctx, msg.PositionSnapshot.AccountID, msg.PositionSnapshot.Positions)
	case wire.KindSyncRequest:
		err = d.handleReconcile(ctx, msg.SyncRequest.AccountID, msg.SyncRequest.Positions)
	default:
		err = domain.ErrUnknownMessage
	}
	if err != nil {
		d.Log.Warn().Err(err).Str("kind", string(msg.Kind)).Msg("handler error")
	}
}

func roleOf(eaType string) domain.Role {
	if eaType == string(domain.RoleMaster) {
		return domain.RoleMaster
	}
	return domain.RoleSlave
}

func (d *Dispatcher) handleHeartbeat(ctx context.Context, m wire.HeartbeatMsg) error {
	account := domain.Account(m.AccountID)
	if err := account.Validate(); err != nil {
		return err
	}
	role := roleOf(m.EAType)

	res := d.Registry.UpdateHeartbeat(registry.HeartbeatInput{
		Account:        account,
		Role:           role,
		Platform:       domain.Platform(m.Platform),
		Balance:        m.Balance,
		Equity:         m.Equity,
		IsTradeAllowed: m.IsTradeAllowed,
	})
	if res.AutoRegistered {
		d.Log.Info().Str("account", m.AccountID).Msg("heartbeat auto-registered unknown connection")
	}
	d.publishSnapshot()

	// spec.md §4.9: re-evaluate and republish only on a meaningful
	// transition (auto-registration, an is_trade_allowed flip, or the
	// connection wasn't already Online) rather than on every heartbeat.
	if res.ShouldReevaluate(m.IsTradeAllowed) {
		if role == domain.RoleMaster {
			d.reevaluateMaster(ctx, account)
		} else {
			d.reevaluateSlave(ctx, account)
		}
	}
	return nil
}

func (d *Dispatcher) handleRegister(ctx context.Context, m wire.RegisterMsg) error {
	account := domain.Account(m.AccountID)
	if err := account.Validate(); err != nil {
		return err
	}
	role := roleOf(m.EAType)

	d.Registry.Register(registry.RegisterInput{
		Account:       account,
		Role:          role,
		Platform:      domain.Platform(m.Platform),
		AccountNumber: m.AccountNumber,
		Broker:        m.Broker,
		Server:        m.Server,
		AccountName:   m.AccountName,
		Currency:      m.Currency,
		Leverage:      m.Leverage,
	})
	d.publishSnapshot()

	// spec.md §4.9: Register publishes the Master/Slave config once,
	// ahead of any Heartbeat, so is_trade_allowed is still the registry's
	// default false. Unlike Heartbeat's reevaluation, this is a one-shot
	// publish: no cascade to the rest of the Master's group.
	if role == domain.RoleMaster {
		if _, err := d.publishMasterConfig(ctx, account); err != nil {
			d.Log.Warn().Err(err).Str("master", string(account)).Msg("register master config publish failed")
		}
	} else {
		d.reevaluateSlave(ctx, account)
	}

	settings, err := d.Repo.GlobalLogSettings(ctx)
	if err != nil {
		d.Log.Warn().Err(err).Msg("load global log settings failed")
	} else if settings != nil {
		msg := wire.GlobalLogSettingsMsg{
			Enabled:           settings.Enabled,
			Endpoint:          settings.Endpoint,
			BatchSize:         settings.BatchSize,
			FlushIntervalSecs: settings.FlushIntervalSecs,
			LogLevel:          settings.LogLevel,
		}
		if err := d.Publisher.Enqueue(publisher.GlobalConfigTopic(), msg); err != nil {
			d.Log.Warn().Err(err).Msg("publish global log settings failed")
		}
	}
	return nil
}

func (d *Dispatcher) handleUnregister(ctx context.Context, m wire.UnregisterMsg) error {
	account := domain.Account(m.AccountID)
	role := domain.RoleSlave
	if m.EAType != nil {
		role = roleOf(*m.EAType)
	}
	if role == domain.RoleMaster {
		d.Disconnect.HandleMasterOffline(ctx, account)
	} else {
		d.Disconnect.HandleSlaveOffline(ctx, account)
	}
	d.publishSnapshot()
	return nil
}

// publishMasterConfig builds and publishes the Master's own config. It
// returns the Master's group (nil if the account owns none) so a caller
// can decide whether to cascade to the group's members.
func (d *Dispatcher) publishMasterConfig(ctx context.Context, account domain.Account) (*domain.TradeGroup, error) {
	group, err := d.Repo.GetTradeGroupByMaster(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	if group == nil {
		return nil, nil
	}

	conn, _ := d.Registry.Get(account, domain.RoleMaster)
	msg, _ := configbuilder.BuildMasterConfig(configbuilder.MasterContext{
		AccountID: string(account),
		Intent:    status.MasterIntent{WebUIEnabled: group.Enabled},
		Conn:      conn.ToSnapshot(),
		Prefix:    group.SymbolPrefix,
		Suffix:    group.SymbolSuffix,
		Version:   group.ConfigVersion,
		Timestamp: time.Now(),
	})
	if err := d.Publisher.Enqueue(publisher.ConfigTopic(account), msg); err != nil {
		d.Log.Warn().Err(err).Str("master", string(account)).Msg("publish master config failed")
	}
	return group, nil
}

// publishOneSlaveConfig evaluates and publishes one member's SlaveConfig,
// persisting its runtime status if it changed.
func (d *Dispatcher) publishOneSlaveConfig(ctx context.Context, member domain.TradeGroupMember) {
	bundle, err := d.Evaluator.SlaveBundle(ctx, member)
	if err != nil {
		d.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("slave bundle evaluation failed")
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

	if bundle.SlaveResult.Status != member.StoredStatus {
		if err := d.Repo.UpdateMemberStatus(ctx, member.ID, bundle.SlaveResult.Status); err != nil {
			d.Log.Warn().Err(err).Str("member", member.ID).Msg("persist member status failed")
		}
	}
	if err := d.Publisher.Enqueue(publisher.ConfigTopic(member.SlaveAccount), msg); err != nil {
		d.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("publish slave config failed")
	}
}

// reevaluateMaster republishes a Master's config and cascades the update
// to every Slave bound to its group, per spec.md §4.9's Heartbeat path.
func (d *Dispatcher) reevaluateMaster(ctx context.Context, account domain.Account) {
	group, err := d.publishMasterConfig(ctx, account)
	if err != nil {
		d.Log.Warn().Err(err).Str("master", string(account)).Msg("master reevaluation failed")
		return
	}
	if group == nil {
		return
	}

	members, err := d.Repo.MembersOfGroup(ctx, group.ID)
	if err != nil {
		d.Log.Warn().Err(err).Str("master", string(account)).Msg("cascade to group members failed")
		return
	}
	for _, member := range members {
		d.publishOneSlaveConfig(ctx, member)
	}
}

// reevaluateSlave republishes config for every link bound to account,
// across every group it belongs to.
func (d *Dispatcher) reevaluateSlave(ctx context.Context, account domain.Account) {
	members, err := d.Repo.MembersForSlave(ctx, account)
	if err != nil {
		d.Log.Warn().Err(err).Str("slave", string(account)).Msg("slave reevaluation failed")
		return
	}
	for _, member := range members {
		d.publishOneSlaveConfig(ctx, member)
	}
}

func (d *Dispatcher) handleRequestConfig(ctx context.Context, m wire.RequestConfigMsg) error {
	account := domain.Account(m.AccountID)

	if roleOf(m.EAType) == domain.RoleMaster {
		group, err := d.publishMasterConfig(ctx, account)
		if err != nil {
			return err
		}
		if group == nil {
			return domain.ErrUnknownMaster
		}
		return nil
	}

	members, err := d.Repo.MembersForSlave(ctx, account)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	for _, member := range members {
		d.publishOneSlaveConfig(ctx, member)
	}
	d.Channel.Publish(fmt.Sprintf("settings_updated:%s", account))
	return nil
}

func (d *Dispatcher) handleTradeSignal(ctx context.Context, m wire.TradeSignalMsg) error {
	signal, err := signalFromWire(m)
	if err != nil {
		return err
	}

	group, err := d.Repo.GetTradeGroupByMaster(ctx, signal.SourceAccount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	if group == nil {
		return domain.ErrUnknownMaster
	}

	d.Channel.Publish(fmt.Sprintf("trade_received:%s:%d", signal.SourceAccount, signal.Ticket))

	members, err := d.Repo.MembersOfGroup(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	masterConn, _ := d.Registry.Get(signal.SourceAccount, domain.RoleMaster)

	for _, member := range members {
		if !member.Enabled || !copyengine.ShouldCopy(signal, member) {
			continue
		}

		slaveConn, _ := d.Registry.Get(member.SlaveAccount, domain.RoleSlave)
		converter := symbols.New(*group, member.Settings)

		out, err := copyengine.Transform(signal, member, converter, masterConn.Equity, slaveConn.Equity)
		if err != nil {
			d.Log.Info().Err(err).Str("slave", string(member.SlaveAccount)).Int64("ticket", signal.Ticket).Msg("signal rejected by transform")
			continue
		}

		if err := d.Publisher.Enqueue(publisher.TradeTopic(signal.SourceAccount, member.SlaveAccount), signalToWire(out)); err != nil {
			d.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("publish trade signal failed")
			continue
		}
		d.Channel.Publish(fmt.Sprintf("trade_copied:%s:%s:%d", signal.SourceAccount, member.SlaveAccount, signal.Ticket))

		mapper := d.TicketMap.Get(signal.SourceAccount, member.SlaveAccount)
		switch signal.Action {
		case domain.ActionOpen:
			mapper.AddActive(signal.Ticket, signal.Ticket)
		case domain.ActionClose:
			mapper.Remove(signal.Ticket)
		}
	}
	return nil
}

// handleReconcile is shared by PositionSnapshot and SyncRequest (spec.md
// §4.9): accountID is the Master reporting its current book. For every
// Slave bound to the Master's group, any master-side position the
// per-link ticket mapper doesn't already know about is synthesized into
// an Open, per the link's sync-mode policy (mt-bridge's
// sync.rs::process_snapshot is the reference behavior).
func (d *Dispatcher) handleReconcile(ctx context.Context, accountID string, positions []wire.WirePosition) error {
	masterAccount := domain.Account(accountID)
	if err := masterAccount.Validate(); err != nil {
		return err
	}

	group, err := d.Repo.GetTradeGroupByMaster(ctx, masterAccount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}
	if group == nil {
		return domain.ErrUnknownMaster
	}

	members, err := d.Repo.MembersOfGroup(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	masterConn, _ := d.Registry.Get(masterAccount, domain.RoleMaster)

	for _, member := range members {
		if !member.Enabled || member.Settings.SyncMode == domain.SyncSkip {
			continue
		}

		mapper := d.TicketMap.Get(masterAccount, member.SlaveAccount)
		slaveConn, _ := d.Registry.Get(member.SlaveAccount, domain.RoleSlave)
		converter := symbols.New(*group, member.Settings)

		for _, pos := range positions {
			d.synthesizeSyncOpen(masterAccount, member, mapper, converter, masterConn.Equity, slaveConn.Equity, pos)
		}
	}

	d.Channel.Publish(fmt.Sprintf("settings_updated:%s", masterAccount))
	return nil
}

// synthesizeSyncOpen publishes one synthesized Open for pos if the
// link's ticket mapper doesn't already know about it, applying the
// member's SyncMode policy. Pending orders are skipped unless
// CopyPendingOrders is set, and are forwarded as-is: the LimitOrder and
// MarketOrder adjustments only apply to market positions, mirroring
// mt-bridge's sync.rs (a pending position is already the order type the
// mode would have converted a market position into).
func (d *Dispatcher) synthesizeSyncOpen(masterAccount domain.Account, member domain.TradeGroupMember, mapper *ticketmap.Mapper, converter symbols.Converter, masterEquity, slaveEquity float64, pos wire.WirePosition) {
	if _, ok := mapper.GetActive(pos.MasterTicket); ok {
		return
	}

	orderType := domain.OrderType(pos.OrderType)
	if !orderType.Valid() {
		return
	}

	isPending := pos.IsPending || isPendingOrderType(orderType)
	if isPending {
		if !member.Settings.CopyPendingOrders {
			return
		}
		if _, ok := mapper.GetPending(pos.MasterTicket); ok {
			return
		}
	}

	symbol := pos.Symbol
	lots := pos.Lots
	openPrice := pos.OpenPrice
	signal := domain.TradeSignal{
		Action:        domain.ActionOpen,
		Ticket:        pos.MasterTicket,
		Symbol:        &symbol,
		OrderType:     &orderType,
		Lots:          &lots,
		OpenPrice:     &openPrice,
		Timestamp:     time.Now(),
		SourceAccount: masterAccount,
	}

	out, err := copyengine.Transform(signal, member, converter, masterEquity, slaveEquity)
	if err != nil {
		d.Log.Info().Err(err).Str("slave", string(member.SlaveAccount)).Int64("ticket", pos.MasterTicket).Msg("sync signal rejected by transform")
		return
	}

	if !isPending {
		switch member.Settings.SyncMode {
		case domain.SyncLimitOrder:
			limitType := out.OrderType.AsLimit()
			out.OrderType = &limitType
			if member.Settings.LimitOrderExpiryMinutes > 0 {
				expiry := member.Settings.LimitOrderExpiryMinutes
				out.SyncExpiryMinutes = &expiry
			}
		case domain.SyncMarketOrder:
			if member.Settings.MarketSyncMaxPips > 0 {
				maxPips := member.Settings.MarketSyncMaxPips
				out.CloseRatio = &maxPips
			}
		}
	}

	if err := d.Publisher.Enqueue(publisher.TradeTopic(masterAccount, member.SlaveAccount), signalToWire(out)); err != nil {
		d.Log.Warn().Err(err).Str("slave", string(member.SlaveAccount)).Msg("publish sync signal failed")
		return
	}
	d.Channel.Publish(fmt.Sprintf("trade_synced:%s:%s:%d", masterAccount, member.SlaveAccount, pos.MasterTicket))

	if isPending {
		mapper.AddPending(pos.MasterTicket, pos.MasterTicket)
	} else {
		mapper.AddActive(pos.MasterTicket, pos.MasterTicket)
	}
}

func isPendingOrderType(ot domain.OrderType) bool {
	switch ot {
	case domain.OrderBuyLimit, domain.OrderSellLimit, domain.OrderBuyStop, domain.OrderSellStop:
		return true
	}
	return false
}

func (d *Dispatcher) publishSnapshot() {
	broadcast.NewSnapshotBroadcaster(d.Registry, d.Channel, 0, d.Log).PublishNow()
}

func signalFromWire(m wire.TradeSignalMsg) (domain.TradeSignal, error) {
	action := domain.Action(m.Action)
	if !action.Valid() {
		return domain.TradeSignal{}, domain.ErrMalformedFrame
	}
	var orderType *domain.OrderType
	if m.OrderType != nil {
		ot := domain.OrderType(*m.OrderType)
		if !ot.Valid() {
			return domain.TradeSignal{}, domain.ErrMalformedFrame
		}
		orderType = &ot
	}

	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		ts = time.Now()
	}

	return domain.TradeSignal{
		Action:            action,
		Ticket:            m.Ticket,
		Symbol:            m.Symbol,
		OrderType:         orderType,
		Lots:              m.Lots,
		OpenPrice:         m.OpenPrice,
		StopLoss:          m.StopLoss,
		TakeProfit:        m.TakeProfit,
		MagicNumber:       m.MagicNumber,
		Comment:           m.Comment,
		Timestamp:         ts,
		SourceAccount:     domain.Account(m.SourceAccount),
		CloseRatio:        m.CloseRatio,
		SyncExpiryMinutes: m.SyncExpiryMinutes,
	}, nil
}

func signalToWire(s domain.TradeSignal) wire.TradeSignalMsg {
	var orderType *string
	if s.OrderType != nil {
		v := string(*s.OrderType)
		orderType = &v
	}
	return wire.TradeSignalMsg{
		Action:            string(s.Action),
		Ticket:            s.Ticket,
		Symbol:            s.Symbol,
		OrderType:         orderType,
		Lots:              s.Lots,
		OpenPrice:         s.OpenPrice,
		StopLoss:          s.StopLoss,
		TakeProfit:        s.TakeProfit,
		MagicNumber:       s.MagicNumber,
		Comment:           s.Comment,
		Timestamp:         s.Timestamp.UTC().Format(time.RFC3339),
		SourceAccount:     string(s.SourceAccount),
		CloseRatio:        s.CloseRatio,
		SyncExpiryMinutes: s.SyncExpiryMinutes,
	}
}
