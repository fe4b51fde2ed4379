package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/logx"
)

// HandleFunc processes a single orders topic Event.
type HandleFunc func(context.Context, Event) error

var newConsumerGroup = sarama.NewConsumerGroup

// Consumer wraps a Sarama consumer group and dispatches events to a handler.
type Consumer struct {
	group      sarama.ConsumerGroup
	topic      string
	handler    HandleFunc
	logger     logx.Logger
	retryDelay time.Duration
}

// NewConsumer creates a consumer. It returns nil, nil when Kafka is not
// configured so callers can skip it.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}
	logger = logx.OrNop(logger)

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:      group,
		topic:      topic,
		handler:    h,
		logger:     logger.With(logx.String("topic", topic), logx.String("group", groupID)),
		retryDelay: time.Second,
	}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	h := &groupHandler{c: c}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("kafka consume error", logx.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close releases the consumer group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message once it is handled or can never be handled.
// A transient handler error ends the session so the message is redelivered.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	logger := h.c.logger
	for msg := range claim.Messages() {
		var dto EventDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			logger.Warn("kafka bad json", logx.Int64("offset", msg.Offset), logx.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}
		ev, err := ToDomain(dto)
		if err != nil {
			logger.Warn("kafka invalid event", logx.String("order_id", dto.OrderID), logx.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}

		if err := h.c.handler(sess.Context(), ev); err != nil {
			if IsPermanent(err) {
				logger.Warn("kafka handle failed, skipping message",
					logx.String("order_id", ev.Order.ID),
					logx.String("kind", string(ev.Kind)),
					logx.Err(err),
				)
				sess.MarkMessage(msg, "")
				continue
			}
			logger.Error("kafka handle failed, will retry",
				logx.String("order_id", ev.Order.ID),
				logx.String("kind", string(ev.Kind)),
				logx.Err(err),
			)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
