package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

func testEvent(t *testing.T) domain.NotificationEvent {
	t.Helper()
	ev, err := domain.NewNotificationEvent(domain.AgentAudience(7), domain.EventOrderAssigned,
		map[string]string{"order_id": "o1"}, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	ev.Seq = 42
	return ev
}

func TestProducer_Send(t *testing.T) {
	t.Parallel()

	ev := testEvent(t)
	mp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		require.Equal(t, "agent:7", string(key))
		require.Equal(t, "dispatch-events", msg.Topic)
		return nil
	})
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var dto NotificationDTO
		if err := json.Unmarshal(val, &dto); err != nil {
			return err
		}
		if dto.ID != ev.ID || dto.Seq != 42 || dto.Type != string(domain.EventOrderAssigned) {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewProducerFrom(mp, "dispatch-events")
	require.NoError(t, p.Send(context.Background(), ev))
	require.NoError(t, p.Send(context.Background(), ev))
	require.NoError(t, p.Close())
}

func TestProducer_SendFailureIsDependencyError(t *testing.T) {
	t.Parallel()

	mp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(mp, "dispatch-events")
	err := p.Send(context.Background(), testEvent(t))
	require.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewProducer_SkipsWhenNotConfigured(t *testing.T) {
	t.Parallel()

	p, err := NewProducer(nil, "topic")
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, p.Close())
}
