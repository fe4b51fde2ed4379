package memory

import (
	"context"
	"sync"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// AgentRepo is an in-memory agent store.
type AgentRepo struct {
	mu     sync.RWMutex
	agents map[int64]domain.Agent
}

// NewAgentRepo creates an empty AgentRepo.
func NewAgentRepo() *AgentRepo {
	return &AgentRepo{agents: make(map[int64]domain.Agent)}
}

// Save inserts or replaces an agent.
func (r *AgentRepo) Save(_ context.Context, a domain.Agent) error {
	if a.ID <= 0 || !a.Approval.Valid() || a.Capacity < 0 {
		return apperr.ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	a.Location = nil
	r.agents[a.ID] = a
	return nil
}

// Get returns the agent by id.
func (r *AgentRepo) Get(_ context.Context, id int64) (domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return domain.Agent{}, apperr.ErrNotFound
	}
	return a, nil
}

// UpdateOnline persists the online flag.
func (r *AgentRepo) UpdateOnline(_ context.Context, id int64, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.agents[id]
	if !ok {
		return apperr.ErrNotFound
	}
	a.Online = online
	r.agents[id] = a
	return nil
}
