//go:generate mockgen -source=contracts.go -destination=dispatch_mocks_test.go -package=dispatch_test

package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/domain"
)

type orderStore interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error)
	ListForAgent(ctx context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error)
}

type agentStore interface {
	Get(ctx context.Context, id int64) (domain.Agent, error)
	UpdateOnline(ctx context.Context, id int64, online bool) error
}

type geoIndex interface {
	UpsertLocation(agentID int64, lat, lng float64, ts time.Time) error
}

type registry interface {
	Track(agentID int64, capacity, activeOrders int) error
	SetOnline(agentID int64, online bool) (bool, error)
	DecrementLoad(agentID int64) error
	Snapshot(agentID int64) (domain.Availability, bool)
}

type orderMatcher interface {
	OnOrderReady(ctx context.Context, orderID string) (domain.Order, error)
	AvailableOrdersFor(ctx context.Context, agentID int64) ([]domain.Order, error)
	OnAgentBecameEligible(ctx context.Context, agentID int64) error
	OnAgentOffline(ctx context.Context, agentID int64) error
	Reject(ctx context.Context, orderID string, agentID int64) (domain.Order, error)
	Sweep(ctx context.Context) error
	Forget(orderID string)
}

type claimArbiter interface {
	TryClaim(ctx context.Context, orderID string, agentID int64) (domain.ClaimResult, error)
}

type notifier interface {
	Publish(ctx context.Context, ev domain.NotificationEvent) error
	Poll(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error)
	Event(ctx context.Context, id uuid.UUID) (domain.NotificationEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

type locationMirror interface {
	Save(ctx context.Context, agentID int64, loc domain.Location) error
	Delete(ctx context.Context, agentID int64) error
}

type counter interface {
	Inc()
}
