package matcher

import (
	"context"

	"courier-dispatch/internal/domain"
)

type orderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error)
	ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error)
}

type geoIndex interface {
	QueryWithinRadius(lat, lng, radiusMeters float64) []domain.Candidate
	Location(agentID int64) (domain.Location, bool)
}

type registry interface {
	CanAcceptMore(agentID int64) bool
}

type publisher interface {
	Publish(ctx context.Context, ev domain.NotificationEvent) error
}

type orderLocker interface {
	Lock(key string) (unlock func())
}
