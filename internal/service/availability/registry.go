package availability

import (
	"sync"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// locator is the part of the geo index the registry drives on online/offline transitions.
type locator interface {
	RemoveAgent(agentID int64)
	Activate(agentID int64)
}

// Registry tracks online state and workload of agents. Once an agent is
// tracked, its load here is authoritative for eligibility decisions.
type Registry struct {
	mu     sync.RWMutex
	agents map[int64]*state
	geo    locator
}

type state struct {
	online   bool
	capacity int
	load     int
}

// NewRegistry creates an empty Registry bound to a geo index.
func NewRegistry(geo locator) *Registry {
	return &Registry{
		agents: make(map[int64]*state),
		geo:    geo,
	}
}

// Track registers an agent or refreshes its capacity. The load is only
// seeded for agents seen for the first time.
func (r *Registry) Track(agentID int64, capacity, activeOrders int) error {
	if agentID <= 0 || capacity < 0 || activeOrders < 0 {
		return apperr.ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.agents[agentID]; ok {
		s.capacity = capacity
		return nil
	}
	r.agents[agentID] = &state{capacity: capacity, load: activeOrders}
	return nil
}

// Tracked reports whether the agent is known to the registry.
func (r *Registry) Tracked(agentID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[agentID]
	return ok
}

// SetOnline switches the online flag and reports whether it changed.
// Going offline hides the agent in the geo index before returning. The geo
// index is updated under the registry lock so both always agree.
func (r *Registry) SetOnline(agentID int64, online bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.agents[agentID]
	if !ok {
		return false, apperr.ErrNotFound
	}
	changed := s.online != online
	s.online = online

	if online {
		r.geo.Activate(agentID)
	} else {
		r.geo.RemoveAgent(agentID)
	}
	return changed, nil
}

// CanAcceptMore reports whether the agent is online and under capacity.
func (r *Registry) CanAcceptMore(agentID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.agents[agentID]
	return ok && s.online && s.load < s.capacity
}

// IncrementLoad takes one delivery slot.
func (r *Registry) IncrementLoad(agentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.agents[agentID]
	if !ok {
		return apperr.ErrNotFound
	}
	if s.load+1 > s.capacity {
		return apperr.ErrCapacityExceeded
	}
	s.load++
	return nil
}

// DecrementLoad releases one delivery slot. The load never drops below zero.
func (r *Registry) DecrementLoad(agentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.agents[agentID]
	if !ok {
		return apperr.ErrNotFound
	}
	if s.load > 0 {
		s.load--
	}
	return nil
}

// Snapshot returns the current availability of an agent.
func (r *Registry) Snapshot(agentID int64) (domain.Availability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.agents[agentID]
	if !ok {
		return domain.Availability{}, false
	}
	return domain.Availability{
		AgentID:      agentID,
		Online:       s.online,
		Capacity:     s.capacity,
		ActiveOrders: s.load,
	}, true
}
