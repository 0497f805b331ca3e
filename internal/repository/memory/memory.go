// Package memory implements domain.Repository entirely in-process. It
// backs unit tests and the RELAY_REPO_BACKEND=memory server mode; internal/repository/
// sqlite is the durable counterpart.
package memory

import (
	"context"
	"sync"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// Repository is a mutex-guarded in-memory domain.Repository.
type Repository struct {
	mu         sync.RWMutex
	groups     map[string]domain.TradeGroup   // by ID
	byMaster   map[domain.Account]string       // master account -> group ID
	members    map[string]domain.TradeGroupMember // by ID
	logSettings *domain.GlobalLogSettings
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{
		groups:   make(map[string]domain.TradeGroup),
		byMaster: make(map[domain.Account]string),
		members:  make(map[string]domain.TradeGroupMember),
	}
}

// PutGroup upserts a TradeGroup, for test setup and admin-surface writes.
func (r *Repository) PutGroup(g domain.TradeGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID] = g
	r.byMaster[g.MasterAccount] = g.ID
}

// PutMember upserts a TradeGroupMember.
func (r *Repository) PutMember(m domain.TradeGroupMember) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.ID] = m
}

// SetGlobalLogSettings stores the admin-configured log shipper settings.
func (r *Repository) SetGlobalLogSettings(s domain.GlobalLogSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logSettings = &s
}

func (r *Repository) GetTradeGroupByMaster(_ context.Context, masterAccount domain.Account) (*domain.TradeGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byMaster[masterAccount]
	if !ok {
		return nil, nil
	}
	g := r.groups[id]
	return &g, nil
}

func (r *Repository) GetMember(_ context.Context, masterAccount, slaveAccount domain.Account) (*domain.TradeGroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.MasterAccount == masterAccount && m.SlaveAccount == slaveAccount {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Repository) MembersOfGroup(_ context.Context, groupID string) ([]domain.TradeGroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.TradeGroupMember
	for _, m := range r.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Repository) MembersForSlave(_ context.Context, slaveAccount domain.Account) ([]domain.TradeGroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.TradeGroupMember
	for _, m := range r.members {
		if m.SlaveAccount == slaveAccount {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Repository) GroupsForSlave(_ context.Context, slaveAccount domain.Account) ([]domain.TradeGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []domain.TradeGroup
	for _, m := range r.members {
		if m.SlaveAccount == slaveAccount && !seen[m.GroupID] {
			seen[m.GroupID] = true
			if g, ok := r.groups[m.GroupID]; ok {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (r *Repository) UpdateMemberStatus(_ context.Context, memberID string, status domain.RuntimeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[memberID]
	if !ok {
		return nil
	}
	m.StoredStatus = status
	r.members[memberID] = m
	return nil
}

func (r *Repository) GlobalLogSettings(_ context.Context) (*domain.GlobalLogSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.logSettings == nil {
		return nil, nil
	}
	out := *r.logSettings
	return &out, nil
}
