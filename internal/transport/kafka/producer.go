package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

var newSyncProducer = sarama.NewSyncProducer

// Producer mirrors notification events to a topic. Messages are keyed by
// target so one audience stays on one partition.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer creates a producer. It returns nil, nil when Kafka is not
// configured.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewProducerFrom(p, topic), nil
}

// NewProducerFrom wraps an existing sarama producer.
func NewProducerFrom(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

// Send publishes ev.
func (p *Producer) Send(ctx context.Context, ev domain.NotificationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(FromNotification(ev))
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.ID, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Target.String()),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("produce event %s: %w: %w", ev.ID, apperr.ErrDependencyUnavailable, err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
