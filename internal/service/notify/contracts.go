package notify

import (
	"context"

	"github.com/google/uuid"

	"courier-dispatch/internal/domain"
)

type eventStore interface {
	Append(ctx context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error)
	Get(ctx context.Context, id uuid.UUID) (domain.NotificationEvent, error)
	ListUndelivered(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error)
	MarkDelivered(ctx context.Context, ids ...uuid.UUID) (int64, error)
}

// Sink receives a copy of every persisted event, e.g. a message broker.
type Sink interface {
	Send(ctx context.Context, ev domain.NotificationEvent) error
}

type counter interface {
	Inc()
}
