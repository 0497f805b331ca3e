package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

func TestGetTradeGroupByMaster_Unknown(t *testing.T) {
	r := New()
	g, err := r.GetTradeGroupByMaster(context.Background(), "M1")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestPutGroupThenLookup(t *testing.T) {
	r := New()
	r.PutGroup(domain.TradeGroup{ID: "G1", MasterAccount: "M1"})

	g, err := r.GetTradeGroupByMaster(context.Background(), "M1")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "G1", g.ID)
}

func TestGroupsForSlave_DedupesAcrossMembers(t *testing.T) {
	r := New()
	r.PutGroup(domain.TradeGroup{ID: "G1", MasterAccount: "M1"})
	r.PutMember(domain.TradeGroupMember{ID: "MEM1", GroupID: "G1", MasterAccount: "M1", SlaveAccount: "S1"})

	groups, err := r.GroupsForSlave(context.Background(), "S1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "G1", groups[0].ID)
}

func TestUpdateMemberStatus_Persists(t *testing.T) {
	r := New()
	r.PutMember(domain.TradeGroupMember{ID: "MEM1", MasterAccount: "M1", SlaveAccount: "S1"})

	require.NoError(t, r.UpdateMemberStatus(context.Background(), "MEM1", domain.StatusConnected))

	m, err := r.GetMember(context.Background(), "M1", "S1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.StatusConnected, m.StoredStatus)
}

func TestGlobalLogSettings_NilUntilSet(t *testing.T) {
	r := New()
	s, err := r.GlobalLogSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	r.SetGlobalLogSettings(domain.GlobalLogSettings{Enabled: true, Endpoint: "https://logs.example.com"})
	s, err = r.GlobalLogSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Enabled)
}
