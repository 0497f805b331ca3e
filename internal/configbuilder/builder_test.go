package configbuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradecopy-relay/internal/domain"
	"github.com/aristath/tradecopy-relay/internal/status"
)

func TestBuildMasterConfig_Connected(t *testing.T) {
	ctx := MasterContext{
		AccountID: "M1",
		Intent:    status.MasterIntent{WebUIEnabled: true},
		Conn:      domain.Snapshot{State: domain.StateOnline, IsTradeAllowed: true},
		Version:   5,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	msg, result := BuildMasterConfig(ctx)

	assert.Equal(t, domain.StatusConnected, result.Status)
	assert.Equal(t, int32(domain.StatusConnected), msg.Status)
	assert.Empty(t, msg.WarningCodes)
	assert.Equal(t, uint32(5), msg.ConfigVersion)
}

func TestBuildSlaveConfig_MasterOffline_Scenario3(t *testing.T) {
	ctx := SlaveContext{
		SlaveAccount:  "S1",
		MasterAccount: "M1",
		Intent:        status.SlaveIntent{WebUIEnabled: true},
		SlaveConn:     domain.Snapshot{State: domain.StateOnline, IsTradeAllowed: true},
		MasterCluster: []status.MasterResult{{Status: domain.StatusDisabled, Warnings: []domain.WarningCode{domain.WarnMasterOffline}}},
		Timestamp:     time.Now(),
	}
	msg, result := BuildSlaveConfig(ctx)

	assert.Equal(t, domain.StatusEnabled, result.Status)
	assert.Equal(t, int32(1), msg.Status)
	assert.False(t, msg.AllowNewOrders)
	require.Equal(t, []string{"master_offline", "master_cluster_degraded"}, msg.WarningCodes)
}

func TestBuildSlaveConfig_CarriesAllSettingsFields(t *testing.T) {
	mult := 1.5
	settings := domain.SlaveSettings{
		LotMode: domain.LotModeMultiplier, LotMultiplier: &mult,
		SymbolMappings: []domain.SymbolMapping{{Source: "A", Target: "B"}},
		ConfigVersion:  7,
	}
	ctx := SlaveContext{Settings: settings, MasterCluster: []status.MasterResult{{Status: domain.StatusConnected}}, SlaveConn: domain.Snapshot{State: domain.StateOnline, IsTradeAllowed: true}}
	msg, _ := BuildSlaveConfig(ctx)

	require.Len(t, msg.SymbolMappings, 1)
	assert.Equal(t, "A", msg.SymbolMappings[0].Source)
	assert.Equal(t, uint32(7), msg.ConfigVersion)
	require.NotNil(t, msg.LotMultiplier)
	assert.InDelta(t, 1.5, *msg.LotMultiplier, 1e-9)
}

func TestBuildSlaveConfig_RequestConfigIdempotent(t *testing.T) {
	ctx := SlaveContext{
		SlaveConn:     domain.Snapshot{State: domain.StateOnline, IsTradeAllowed: true},
		MasterCluster: []status.MasterResult{{Status: domain.StatusConnected}},
		Timestamp:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	first, _ := BuildSlaveConfig(ctx)
	second, _ := BuildSlaveConfig(ctx)
	assert.Equal(t, first, second)
}
