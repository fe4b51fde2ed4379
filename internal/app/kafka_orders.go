package app

import (
	"context"
	"errors"
	"fmt"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/transport/kafka"
)

type orderIngest interface {
	RegisterOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus, by *int64) (domain.Order, error)
}

// makeOrdersKafka routes orders topic events to the dispatch service.
// Errors that a redelivery cannot fix are marked permanent so the consumer
// skips the message.
func makeOrdersKafka(svc orderIngest, logger logx.Logger) kafka.HandleFunc {
	return func(ctx context.Context, ev kafka.Event) error {
		var err error
		switch ev.Kind {
		case kafka.EventReady:
			_, err = svc.RegisterOrder(ctx, ev.Order)
		case kafka.EventCancelled, kafka.EventDelivered:
			_, err = svc.UpdateOrderStatus(ctx, ev.Order.ID, ev.Order.Status, nil)
		default:
			return kafka.Permanent(fmt.Errorf("unsupported event kind %q", ev.Kind))
		}
		if err == nil {
			logger.Debug("order event applied",
				logx.String("order_id", ev.Order.ID),
				logx.String("kind", string(ev.Kind)),
			)
			return nil
		}
		if isPermanent(err) {
			return kafka.Permanent(err)
		}
		return err
	}
}

func isPermanent(err error) bool {
	for _, target := range []error{
		apperr.ErrInvalid,
		apperr.ErrNotFound,
		apperr.ErrConflict,
		apperr.ErrForbidden,
		apperr.ErrNotEligible,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
