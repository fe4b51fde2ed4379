package ws

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/notify"
)

type subscriber interface {
	Subscribe(ctx context.Context, target domain.Audience, handler notify.Handler) (*notify.Subscription, error)
}

type dispatchService interface {
	UpdateLocation(ctx context.Context, agentID int64, p domain.Point, ts time.Time) (bool, error)
	AckNotification(ctx context.Context, caller domain.Audience, id string) error
	WatchOrder(ctx context.Context, caller domain.Audience, orderID string) (domain.Order, error)
}
