package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/repository/memory"
	"courier-dispatch/internal/service/notify"
	testlog "courier-dispatch/internal/testutil"
)

type collector struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (c *collector) handle(_ context.Context, ev domain.NotificationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *collector) snapshot() []domain.NotificationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.NotificationEvent(nil), c.events...)
}

func (c *collector) len() int { return len(c.snapshot()) }

func newEvent(t *testing.T, target domain.Audience, n int) domain.NotificationEvent {
	t.Helper()
	ev, err := domain.NewNotificationEvent(target, domain.EventOrderStatusChanged, map[string]int{"n": n}, time.Now())
	require.NoError(t, err)
	return ev
}

func TestPublish_PersistsWithoutSubscribers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	published := metrics.NewNotificationsPublishedTotal()
	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop(), notify.WithCounters(published, metrics.NewNotificationsPushDroppedTotal()))
	target := domain.CustomerAudience(10)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Publish(ctx, newEvent(t, target, i)))
	}
	require.InDelta(t, 3, testutil.ToFloat64(published), 0)

	got, err := d.Poll(ctx, target, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Less(t, got[0].Seq, got[1].Seq)
	require.True(t, got[0].Delivered)

	got, err = d.Poll(ctx, target, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = d.Poll(ctx, target, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSubscribe_FlushesBacklogThenLive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop())
	target := domain.AgentAudience(1)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Publish(ctx, newEvent(t, target, i)))
	}
	require.NoError(t, d.Publish(ctx, newEvent(t, domain.AgentAudience(2), 0)))

	c := &collector{}
	sub, err := d.Subscribe(ctx, target, c.handle)
	require.NoError(t, err)
	defer sub.Close()
	require.Equal(t, target, sub.Target())

	for i := 3; i < 5; i++ {
		require.NoError(t, d.Publish(ctx, newEvent(t, target, i)))
	}

	require.Eventually(t, func() bool { return c.len() == 5 }, time.Second, 5*time.Millisecond)
	got := c.snapshot()
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].Seq, got[i].Seq)
		require.Equal(t, target, got[i].Target)
	}
}

func TestPublish_PerTargetOrderUnderConcurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop(), notify.WithBuffer(1000))
	target := domain.OrderAudience("o1")

	c := &collector{}
	sub, err := d.Subscribe(ctx, target, c.handle)
	require.NoError(t, err)
	defer sub.Close()

	const writers, each = 10, 50
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < each; i++ {
				ev, err := domain.NewNotificationEvent(target, domain.EventOrderStatusChanged, i, time.Now())
				if err != nil {
					return err
				}
				if err := d.Publish(gctx, ev); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Eventually(t, func() bool { return c.len() == writers*each }, 2*time.Second, 5*time.Millisecond)
	got := c.snapshot()
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].Seq, got[i].Seq, "pushed out of creation order at %d", i)
	}
}

func TestPublish_SlowSubscriberDropsPushKeepsEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dropped := metrics.NewNotificationsPushDroppedTotal()
	rec := testlog.New()
	d := notify.NewDispatcher(memory.NewNotificationRepo(), rec.Logger(),
		notify.WithBuffer(1),
		notify.WithCounters(metrics.NewNotificationsPublishedTotal(), dropped),
	)
	target := domain.AgentAudience(1)

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	sub, err := d.Subscribe(ctx, target, func(context.Context, domain.NotificationEvent) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, d.Publish(ctx, newEvent(t, target, 1)))
	<-entered
	require.NoError(t, d.Publish(ctx, newEvent(t, target, 2)))
	require.NoError(t, d.Publish(ctx, newEvent(t, target, 3)))

	require.InDelta(t, 1, testutil.ToFloat64(dropped), 0)
	require.True(t, rec.Has("warn", "subscriber lagging, push dropped"))

	got, err := d.Poll(ctx, target, 0)
	require.NoError(t, err)
	require.Len(t, got, 3, "pushed events stay undelivered until acknowledged")

	close(release)
	sub.Close()
	<-sub.Done()
}

func TestPublish_LaggingSubscriberCatchesUpInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop(), notify.WithBuffer(1))
	target := domain.AgentAudience(2)

	var (
		mu   sync.Mutex
		seqs []int64
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	sub, err := d.Subscribe(ctx, target, func(_ context.Context, ev domain.NotificationEvent) error {
		first.Do(func() {
			close(entered)
			<-release
		})
		mu.Lock()
		seqs = append(seqs, ev.Seq)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	defer func() {
		sub.Close()
		<-sub.Done()
	}()

	require.NoError(t, d.Publish(ctx, newEvent(t, target, 1)))
	<-entered
	require.NoError(t, d.Publish(ctx, newEvent(t, target, 2)))
	require.NoError(t, d.Publish(ctx, newEvent(t, target, 3)))
	close(release)

	received := func() []int64 {
		mu.Lock()
		defer mu.Unlock()
		return append([]int64(nil), seqs...)
	}
	require.Eventually(t, func() bool { return len(received()) == 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, d.Publish(ctx, newEvent(t, target, 4)))
	require.Eventually(t, func() bool { return len(received()) == 4 }, 2*time.Second, 5*time.Millisecond)

	got := received()
	for i := 1; i < len(got); i++ {
		require.Equal(t, got[i-1]+1, got[i], "push stream out of order: %v", got)
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop())
	target := domain.PharmacyAudience(3)

	c := &collector{}
	sub, err := d.Subscribe(ctx, target, c.handle)
	require.NoError(t, err)
	require.Equal(t, 1, d.Subscribers(target))

	sub.Close()
	sub.Close()
	<-sub.Done()
	require.Zero(t, d.Subscribers(target))

	require.NoError(t, d.Publish(ctx, newEvent(t, target, 1)))
	require.Zero(t, c.len())

	var self *notify.Subscription
	ready := make(chan struct{})
	self, err = d.Subscribe(ctx, target, func(context.Context, domain.NotificationEvent) error {
		<-ready
		self.Close()
		return nil
	})
	require.NoError(t, err)
	close(ready)
	select {
	case <-self.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription closed from its handler did not stop")
	}
}

func TestMarkDelivered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop())
	target := domain.AgentAudience(1)
	ev := newEvent(t, target, 1)
	require.NoError(t, d.Publish(ctx, ev))

	require.NoError(t, d.MarkDelivered(ctx, ev.ID))
	require.NoError(t, d.MarkDelivered(ctx, ev.ID))
	require.ErrorIs(t, d.MarkDelivered(ctx, uuid.New()), apperr.ErrNotFound)

	stored, err := d.Event(ctx, ev.ID)
	require.NoError(t, err)
	require.True(t, stored.Delivered)

	c := &collector{}
	sub, err := d.Subscribe(ctx, target, c.handle)
	require.NoError(t, err)
	defer sub.Close()
	require.Never(t, func() bool { return c.len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

type sinkFunc func(context.Context, domain.NotificationEvent) error

func (f sinkFunc) Send(ctx context.Context, ev domain.NotificationEvent) error { return f(ctx, ev) }

func TestPublish_Sink(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var mirrored []domain.NotificationEvent
	d := notify.NewDispatcher(memory.NewNotificationRepo(), logx.Nop(), notify.WithSink(sinkFunc(func(_ context.Context, ev domain.NotificationEvent) error {
		mirrored = append(mirrored, ev)
		return nil
	})))
	require.NoError(t, d.Publish(ctx, newEvent(t, domain.AgentAudience(1), 1)))
	require.Len(t, mirrored, 1)
	require.Equal(t, int64(1), mirrored[0].Seq)

	rec := testlog.New()
	d = notify.NewDispatcher(memory.NewNotificationRepo(), rec.Logger(), notify.WithSink(sinkFunc(func(context.Context, domain.NotificationEvent) error {
		return errors.New("broker down")
	})))
	require.NoError(t, d.Publish(ctx, newEvent(t, domain.AgentAudience(1), 1)))
	require.True(t, rec.Has("warn", "event sink failed"))
}

type failingStore struct {
	*memory.NotificationRepo
}

func (failingStore) Append(context.Context, domain.NotificationEvent) (domain.NotificationEvent, error) {
	return domain.NotificationEvent{}, apperr.ErrDependencyUnavailable
}

func (failingStore) ListUndelivered(context.Context, domain.Audience, int) ([]domain.NotificationEvent, error) {
	return nil, apperr.ErrDependencyUnavailable
}

func TestDispatcher_StoreFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := notify.NewDispatcher(failingStore{memory.NewNotificationRepo()}, nil)
	err := d.Publish(ctx, newEvent(t, domain.AgentAudience(1), 1))
	require.ErrorIs(t, err, apperr.ErrDependencyUnavailable)

	_, err = d.Subscribe(ctx, domain.AgentAudience(1), func(context.Context, domain.NotificationEvent) error { return nil })
	require.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
	require.Zero(t, d.Subscribers(domain.AgentAudience(1)))

	_, err = d.Poll(ctx, domain.AgentAudience(1), 10)
	require.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
}
