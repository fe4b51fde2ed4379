// Package memory implements the order, agent and notification stores in
// process memory. All stores are safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// OrderRepo is an in-memory order store.
type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	now    func() time.Time
}

// NewOrderRepo creates an empty OrderRepo.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		orders: make(map[string]domain.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new order.
func (r *OrderRepo) Create(_ context.Context, o domain.Order) (domain.Order, error) {
	o.ID = strings.TrimSpace(o.ID)
	if o.ID == "" || !o.Valid() || !o.Pickup.Valid() {
		return domain.Order{}, apperr.ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return domain.Order{}, apperr.ErrConflict
	}
	now := r.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	o.AssignedAgentID = copyID(o.AssignedAgentID)
	r.orders[o.ID] = o
	return cloneOrder(o), nil
}

// Get returns the order by id.
func (r *OrderRepo) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, apperr.ErrNotFound
	}
	return cloneOrder(o), nil
}

// UpdateStatus applies tr only if the order is still in tr.Expected. An
// available order that somehow carries an agent never matches.
func (r *OrderRepo) UpdateStatus(_ context.Context, tr domain.StatusTransition) (domain.Order, error) {
	if !domain.CanTransition(tr.Expected, tr.Next) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", tr.Expected, tr.Next, apperr.ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[tr.OrderID]
	if !ok {
		return domain.Order{}, apperr.ErrNotFound
	}
	if o.Status != tr.Expected {
		return domain.Order{}, apperr.ErrConflict
	}
	if o.Status == domain.OrderAvailable && o.AssignedAgentID != nil {
		return domain.Order{}, apperr.ErrConflict
	}

	next := o
	next.Status = tr.Next
	switch {
	case !tr.Next.HasAssignee():
		next.AssignedAgentID = nil
	case tr.Agent != nil:
		next.AssignedAgentID = copyID(tr.Agent)
	}
	if !next.Valid() {
		return domain.Order{}, apperr.ErrInvalid
	}
	next.UpdatedAt = r.now()
	r.orders[o.ID] = next
	return cloneOrder(next), nil
}

// ListByStatus returns orders in any of the statuses, oldest first.
func (r *OrderRepo) ListByStatus(_ context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool { return hasStatus(o, statuses) }), nil
}

// ListForAgent returns the agent's orders in any of the statuses, oldest first.
func (r *OrderRepo) ListForAgent(_ context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool {
		return o.AssignedTo(agentID) && hasStatus(o, statuses)
	}), nil
}

func (r *OrderRepo) list(match func(domain.Order) bool) []domain.Order {
	r.mu.RLock()
	out := make([]domain.Order, 0)
	for _, o := range r.orders {
		if match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func hasStatus(o domain.Order, statuses []domain.OrderStatus) bool {
	for _, s := range statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneOrder(o domain.Order) domain.Order {
	o.AssignedAgentID = copyID(o.AssignedAgentID)
	return o
}
