package sqlite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(":memory:", zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestUpsertGroupThenGetByMaster(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertGroup(ctx, domain.TradeGroup{
		ID: "G1", MasterAccount: "M1", Enabled: true, SymbolPrefix: "m_", ConfigVersion: 3,
	}))

	g, err := repo.GetTradeGroupByMaster(ctx, "M1")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "G1", g.ID)
	assert.True(t, g.Enabled)
	assert.Equal(t, uint32(3), g.ConfigVersion)
}

func TestUpsertMemberRoundTripsSettings(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertGroup(ctx, domain.TradeGroup{ID: "G1", MasterAccount: "M1"}))

	mult := 1.5
	require.NoError(t, repo.UpsertMember(ctx, domain.TradeGroupMember{
		ID: "MEM1", GroupID: "G1", MasterAccount: "M1", SlaveAccount: "S1", Enabled: true,
		Settings: domain.SlaveSettings{
			LotMode: domain.LotModeMultiplier, LotMultiplier: &mult,
			SymbolMappings: []domain.SymbolMapping{{Source: "X", Target: "Y"}},
			BlockedSymbols: []string{"EURUSD"},
		},
	}))

	m, err := repo.GetMember(ctx, "M1", "S1")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NotNil(t, m.Settings.LotMultiplier)
	assert.InDelta(t, 1.5, *m.Settings.LotMultiplier, 1e-9)
	require.Len(t, m.Settings.SymbolMappings, 1)
	assert.Equal(t, "X", m.Settings.SymbolMappings[0].Source)
	assert.Equal(t, []string{"EURUSD"}, m.Settings.BlockedSymbols)
}

func TestUpdateMemberStatus(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertGroup(ctx, domain.TradeGroup{ID: "G1", MasterAccount: "M1"}))
	require.NoError(t, repo.UpsertMember(ctx, domain.TradeGroupMember{ID: "MEM1", GroupID: "G1", MasterAccount: "M1", SlaveAccount: "S1"}))

	require.NoError(t, repo.UpdateMemberStatus(ctx, "MEM1", domain.StatusConnected))

	m, err := repo.GetMember(ctx, "M1", "S1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.StatusConnected, m.StoredStatus)
}

func TestGroupsForSlave(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.UpsertGroup(ctx, domain.TradeGroup{ID: "G1", MasterAccount: "M1"}))
	require.NoError(t, repo.UpsertMember(ctx, domain.TradeGroupMember{ID: "MEM1", GroupID: "G1", MasterAccount: "M1", SlaveAccount: "S1"}))

	groups, err := repo.GroupsForSlave(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "G1", groups[0].ID)
}

func TestGlobalLogSettings_NilUntilSeeded(t *testing.T) {
	repo := openTestRepo(t)
	s, err := repo.GlobalLogSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}
