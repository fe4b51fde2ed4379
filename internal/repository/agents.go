package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// AgentRepo represents agent repository.
type AgentRepo struct{ db *pgxpool.Pool }

// NewAgentRepo creates a new AgentRepo.
func NewAgentRepo(db *pgxpool.Pool) *AgentRepo { return &AgentRepo{db: db} }

// Save - inserts or replaces an agent record.
func (r *AgentRepo) Save(ctx context.Context, a domain.Agent) error {
	if a.ID <= 0 || !a.Approval.Valid() || a.Capacity < 0 {
		return apperr.ErrInvalid
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO agents (id, name, approval, capacity, online)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    approval = EXCLUDED.approval,
		    capacity = EXCLUDED.capacity,
		    online = EXCLUDED.online,
		    updated_at = now()`,
		a.ID, a.Name, string(a.Approval), a.Capacity, a.Online,
	)
	if err != nil {
		return unavailable(fmt.Sprintf("save agent %d", a.ID), err)
	}
	return nil
}

// Get - returns agent by its ID.
func (r *AgentRepo) Get(ctx context.Context, id int64) (domain.Agent, error) {
	var (
		a        domain.Agent
		approval string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, approval, capacity, online FROM agents WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &approval, &a.Capacity, &a.Online)
	if err != nil {
		if IsNotFound(err) {
			return domain.Agent{}, apperr.ErrNotFound
		}
		return domain.Agent{}, unavailable(fmt.Sprintf("get agent %d", id), err)
	}
	a.Approval = domain.ApprovalState(approval)
	return a, nil
}

// UpdateOnline - persists the online flag.
func (r *AgentRepo) UpdateOnline(ctx context.Context, id int64, online bool) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE agents SET online = $2, updated_at = now() WHERE id = $1`, id, online)
	if err != nil {
		return unavailable(fmt.Sprintf("update agent %d", id), err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
