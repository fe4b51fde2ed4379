package handlers

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/dispatch"
)

type dispatchUsecase interface {
	RegisterOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	OrderReady(ctx context.Context, orderID string) (domain.Order, error)
	Accept(ctx context.Context, orderID string, agentID int64) (domain.ClaimResult, error)
	Reject(ctx context.Context, orderID string, agentID int64) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus, by *int64) (domain.Order, error)
	WatchOrder(ctx context.Context, caller domain.Audience, orderID string) (domain.Order, error)

	SetOnline(ctx context.Context, agentID int64, online bool) (domain.Availability, error)
	UpdateLocation(ctx context.Context, agentID int64, p domain.Point, ts time.Time) (bool, error)
	AvailableOrders(ctx context.Context, agentID int64) ([]domain.Order, error)

	Notifications(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error)
	AckNotification(ctx context.Context, caller domain.Audience, id string) error
}

// NewDispatchUsecase wires a dispatch.Service into the handlers.
func NewDispatchUsecase(svc *dispatch.Service) dispatchUsecase {
	return svc
}
