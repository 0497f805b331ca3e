package ticketmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddActive_GetActive(t *testing.T) {
	m := New()
	m.AddActive(100, 200)

	got, ok := m.GetActive(100)
	assert.True(t, ok)
	assert.Equal(t, int64(200), got)
}

func TestPromotePendingToActive(t *testing.T) {
	m := New()
	m.AddPending(1, 2)

	assert.True(t, m.PromotePendingToActive(1))
	_, stillPending := m.GetPending(1)
	assert.False(t, stillPending)

	got, ok := m.GetActive(1)
	assert.True(t, ok)
	assert.Equal(t, int64(2), got)
}

func TestRemove_ClearsBothTables(t *testing.T) {
	m := New()
	m.AddActive(1, 2)
	m.AddPending(1, 3)
	m.Remove(1)

	_, ok := m.GetActive(1)
	assert.False(t, ok)
	_, ok = m.GetPending(1)
	assert.False(t, ok)
}

func TestLinksAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.AddActive(1, 2)

	_, ok := b.GetActive(1)
	assert.False(t, ok)
}

func TestStore_GetIsStablePerLink(t *testing.T) {
	s := NewStore()
	m1 := s.Get("M1", "S1")
	m1.AddActive(1, 1)

	m2 := s.Get("M1", "S1")
	got, ok := m2.GetActive(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)
}

func TestStore_DistinctLinksGetDistinctMappers(t *testing.T) {
	s := NewStore()
	s.Get("M1", "S1").AddActive(1, 1)

	_, ok := s.Get("M1", "S2").GetActive(1)
	assert.False(t, ok)

	_, ok = s.Get("M2", "S1").GetActive(1)
	assert.False(t, ok)
}
