package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

func TestRegister_SecondCallIsNoOp(t *testing.T) {
	r := New()
	r.Register(RegisterInput{Account: "M1", Role: domain.RoleMaster, Broker: "B1"})
	r.Register(RegisterInput{Account: "M1", Role: domain.RoleMaster, Broker: "B2"})

	conn, ok := r.Get("M1", domain.RoleMaster)
	require.True(t, ok)
	assert.Equal(t, "B1", conn.Broker)
	assert.Equal(t, domain.StateRegistered, conn.State)
}

func TestUpdateHeartbeat_AutoRegisters(t *testing.T) {
	r := New()
	res := r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster, IsTradeAllowed: true})
	assert.True(t, res.AutoRegistered)
	assert.True(t, res.ShouldReevaluate(true))

	conn, ok := r.Get("M1", domain.RoleMaster)
	require.True(t, ok)
	assert.Equal(t, domain.StateOnline, conn.State)
	assert.True(t, conn.IsTradeAllowed)
}

func TestUpdateHeartbeat_ExistingRecordNotAutoRegistered(t *testing.T) {
	r := New()
	r.Register(RegisterInput{Account: "M1", Role: domain.RoleMaster})
	res := r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster, IsTradeAllowed: true})
	assert.False(t, res.AutoRegistered)
}

func TestHeartbeatResult_ShouldReevaluate(t *testing.T) {
	r := New()
	r.Register(RegisterInput{Account: "M1", Role: domain.RoleMaster})

	// First heartbeat after Register: prior state Registered (not Online) -> must reevaluate.
	res := r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster, IsTradeAllowed: true})
	assert.False(t, res.AutoRegistered)
	assert.True(t, res.ShouldReevaluate(true))

	// Second heartbeat, same is_trade_allowed, prior state now Online -> no reevaluation.
	res = r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster, IsTradeAllowed: true})
	assert.True(t, res.PriorState == domain.StateOnline)
	assert.False(t, res.ShouldReevaluate(true))

	// Third heartbeat, is_trade_allowed flips -> must reevaluate.
	res = r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster, IsTradeAllowed: false})
	assert.True(t, res.ShouldReevaluate(false))
}

func TestUnregister_SetsOfflinePreservesMetadata(t *testing.T) {
	r := New()
	r.Register(RegisterInput{Account: "M1", Role: domain.RoleMaster, Broker: "IC Markets"})
	r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster})
	r.Unregister("M1", domain.RoleMaster)

	conn, ok := r.Get("M1", domain.RoleMaster)
	require.True(t, ok)
	assert.Equal(t, domain.StateOffline, conn.State)
	assert.Equal(t, "IC Markets", conn.Broker)
}

func TestUnregister_UnknownKeyIsNoOp(t *testing.T) {
	r := New()
	r.Unregister("ghost", domain.RoleMaster)
	_, ok := r.Get("ghost", domain.RoleMaster)
	assert.False(t, ok)
}

func TestCheckTimeouts_SweepsStaleOnlineRecords(t *testing.T) {
	r := New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster})

	r.now = func() time.Time { return fixed.Add(61 * time.Second) }
	timedOut := r.CheckTimeouts(60 * time.Second)

	require.Len(t, timedOut, 1)
	assert.Equal(t, domain.Key{Account: "M1", Role: domain.RoleMaster}, timedOut[0])

	conn, _ := r.Get("M1", domain.RoleMaster)
	assert.Equal(t, domain.StateTimeout, conn.State)
}

func TestCheckTimeouts_IgnoresOfflineRecords(t *testing.T) {
	r := New()
	r.UpdateHeartbeat(HeartbeatInput{Account: "M1", Role: domain.RoleMaster})
	r.Unregister("M1", domain.RoleMaster)

	timedOut := r.CheckTimeouts(0)
	assert.Empty(t, timedOut)
}

func TestGetByAccount_BothRoles(t *testing.T) {
	r := New()
	r.Register(RegisterInput{Account: "X", Role: domain.RoleMaster})
	r.Register(RegisterInput{Account: "X", Role: domain.RoleSlave})

	conns := r.GetByAccount("X")
	assert.Len(t, conns, 2)
}
