package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

const orderColumns = `id, status, assigned_agent_id, customer_id, pharmacy_id, pickup_lat, pickup_lng, created_at, updated_at`

// OrderRepo represents order repository.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// Create - inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.ID == "" || !o.Valid() || !o.Pickup.Valid() {
		return domain.Order{}, apperr.ErrInvalid
	}
	var createdAt *time.Time
	if !o.CreatedAt.IsZero() {
		createdAt = &o.CreatedAt
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO orders (id, status, assigned_agent_id, customer_id, pharmacy_id, pickup_lat, pickup_lng, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		RETURNING `+orderColumns,
		o.ID, string(o.Status), o.AssignedAgentID, o.CustomerID, o.PharmacyID, o.Pickup.Lat, o.Pickup.Lng, createdAt,
	)
	created, err := scanOrder(row)
	if err != nil {
		if IsDuplicate(err) {
			return domain.Order{}, apperr.ErrConflict
		}
		return domain.Order{}, unavailable(fmt.Sprintf("create order %s", o.ID), err)
	}
	return created, nil
}

// Get - returns order by its ID.
func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return domain.Order{}, apperr.ErrNotFound
		}
		return domain.Order{}, unavailable(fmt.Sprintf("get order %s", id), err)
	}
	return o, nil
}

// UpdateStatus - applies tr only while the row is still in tr.Expected. An
// available row that carries an agent never matches, so the assignment is a
// single compare-and-set.
func (r *OrderRepo) UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error) {
	if !domain.CanTransition(tr.Expected, tr.Next) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", tr.Expected, tr.Next, apperr.ErrInvalid)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE orders
		SET
			status            = $3,
			assigned_agent_id = CASE WHEN $5 THEN COALESCE($4, assigned_agent_id) ELSE NULL END,
			updated_at        = now()
		WHERE id = $1
		  AND status = $2
		  AND (status <> 'available' OR assigned_agent_id IS NULL)
		RETURNING `+orderColumns,
		tr.OrderID, string(tr.Expected), string(tr.Next), tr.Agent, tr.Next.HasAssignee(),
	)
	o, err := scanOrder(row)
	switch {
	case err == nil:
		return o, nil
	case IsCheckViolation(err):
		return domain.Order{}, apperr.ErrInvalid
	case !IsNotFound(err):
		return domain.Order{}, unavailable(fmt.Sprintf("update order %s", tr.OrderID), err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, tr.OrderID).Scan(&exists); err != nil {
		return domain.Order{}, unavailable(fmt.Sprintf("check order %s", tr.OrderID), err)
	}
	if !exists {
		return domain.Order{}, apperr.ErrNotFound
	}
	return domain.Order{}, apperr.ErrConflict
}

// ListByStatus - returns orders in any of the statuses, oldest first.
func (r *OrderRepo) ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = ANY($1)
		ORDER BY created_at, id`,
		statusNames(statuses),
	)
	if err != nil {
		return nil, unavailable("list orders", err)
	}
	return collectOrders(rows)
}

// ListForAgent - returns the agent's orders in any of the statuses, oldest first.
func (r *OrderRepo) ListForAgent(ctx context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE assigned_agent_id = $1 AND status = ANY($2)
		ORDER BY created_at, id`,
		agentID, statusNames(statuses),
	)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("list orders of agent %d", agentID), err)
	}
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, unavailable("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read orders", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &status, &o.AssignedAgentID, &o.CustomerID, &o.PharmacyID,
		&o.Pickup.Lat, &o.Pickup.Lng, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

func statusNames(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
