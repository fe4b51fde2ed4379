// Package notify persists notification events and pushes them to live
// subscribers. Delivery is at-least-once; events of one target are pushed
// in the order they were stored.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/keymutex"
	"courier-dispatch/internal/logx"
)

// DefaultBuffer is the live queue length of a subscription.
const DefaultBuffer = 64

const resyncBackoff = time.Second

// Handler consumes a pushed event. Pushed events stay undelivered until
// MarkDelivered is called.
type Handler func(ctx context.Context, ev domain.NotificationEvent) error

// Dispatcher fans out notification events.
type Dispatcher struct {
	store  eventStore
	locks  *keymutex.Map
	logger logx.Logger

	sink      Sink
	published counter
	dropped   counter
	buffer    int

	mu     sync.RWMutex
	subs   map[domain.Audience]map[uint64]*Subscription
	nextID uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSink mirrors every persisted event to s.
func WithSink(s Sink) Option {
	return func(d *Dispatcher) { d.sink = s }
}

// WithBuffer sets the live queue length of new subscriptions.
func WithBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.buffer = n
		}
	}
}

// WithCounters sets the published and dropped-push counters.
func WithCounters(published, dropped counter) Option {
	return func(d *Dispatcher) {
		d.published = published
		d.dropped = dropped
	}
}

// NewDispatcher creates a Dispatcher on top of an event store.
func NewDispatcher(store eventStore, logger logx.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logx.Nop()
	}
	d := &Dispatcher{
		store:  store,
		locks:  keymutex.New(),
		logger: logger,
		buffer: DefaultBuffer,
		subs:   make(map[domain.Audience]map[uint64]*Subscription),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish stores the event and then offers it to the target's live
// subscribers. Only a failing store is reported; a subscriber that cannot
// keep up loses the push but the event remains available for polling.
func (d *Dispatcher) Publish(ctx context.Context, ev domain.NotificationEvent) error {
	unlock := d.locks.Lock(ev.Target.String())
	stored, err := d.store.Append(ctx, ev)
	if err != nil {
		unlock()
		return fmt.Errorf("persist %s for %s: %w", ev.Type, ev.Target, err)
	}
	d.push(stored)
	unlock()

	if d.published != nil {
		d.published.Inc()
	}
	if d.sink != nil {
		if err := d.sink.Send(ctx, stored); err != nil {
			d.logger.Warn("event sink failed",
				logx.String("event_id", stored.ID.String()),
				logx.String("target", stored.Target.String()),
				logx.Err(err),
			)
		}
	}
	return nil
}

// Subscribe registers handler for the target. All undelivered events of the
// target are queued ahead of anything published afterwards.
func (d *Dispatcher) Subscribe(ctx context.Context, target domain.Audience, handler Handler) (*Subscription, error) {
	unlock := d.locks.Lock(target.String())
	defer unlock()

	backlog, err := d.store.ListUndelivered(ctx, target, 0)
	if err != nil {
		return nil, fmt.Errorf("load backlog of %s: %w", target, err)
	}

	wctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		target:  target,
		d:       d,
		queue:   make(chan domain.NotificationEvent, d.buffer+len(backlog)),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	for _, ev := range backlog {
		sub.queue <- ev
		sub.lastSeq = ev.Seq
	}

	d.mu.Lock()
	d.nextID++
	sub.id = d.nextID
	set, ok := d.subs[target]
	if !ok {
		set = make(map[uint64]*Subscription)
		d.subs[target] = set
	}
	set[sub.id] = sub
	d.mu.Unlock()

	go sub.run(wctx, handler)

	d.logger.Debug("subscribed",
		logx.String("target", target.String()),
		logx.Int("backlog", len(backlog)),
	)
	return sub, nil
}

// MarkDelivered flags an event as consumed. Marking twice is a no-op.
func (d *Dispatcher) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	n, err := d.store.MarkDelivered(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Event returns a stored event.
func (d *Dispatcher) Event(ctx context.Context, id uuid.UUID) (domain.NotificationEvent, error) {
	return d.store.Get(ctx, id)
}

// Poll returns up to limit undelivered events of the target in creation
// order and marks them delivered.
func (d *Dispatcher) Poll(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error) {
	events, err := d.store.ListUndelivered(ctx, target, limit)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]uuid.UUID, len(events))
	for i := range events {
		ids[i] = events[i].ID
		events[i].Delivered = true
	}
	if _, err := d.store.MarkDelivered(ctx, ids...); err != nil {
		return nil, err
	}
	return events, nil
}

// Subscribers returns the number of live subscriptions of the target.
func (d *Dispatcher) Subscribers(target domain.Audience) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[target])
}

// push must run under the target lock. A subscription whose queue
// overflowed gets nothing live until its worker has resynced from the store.
func (d *Dispatcher) push(ev domain.NotificationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, sub := range d.subs[ev.Target] {
		if sub.lagging.Load() {
			continue
		}
		select {
		case sub.queue <- ev:
			sub.lastSeq = ev.Seq
		default:
			sub.lagging.Store(true)
			if d.dropped != nil {
				d.dropped.Inc()
			}
			d.logger.Warn("subscriber lagging, push dropped",
				logx.String("target", ev.Target.String()),
				logx.String("event_id", ev.ID.String()),
			)
		}
	}
}

// resync returns the undelivered events of the subscription's target that
// were never queued and clears its lagging flag.
func (d *Dispatcher) resync(ctx context.Context, sub *Subscription) ([]domain.NotificationEvent, error) {
	unlock := d.locks.Lock(sub.target.String())
	defer unlock()

	events, err := d.store.ListUndelivered(ctx, sub.target, 0)
	if err != nil {
		return nil, fmt.Errorf("resync %s: %w", sub.target, err)
	}
	missed := make([]domain.NotificationEvent, 0, len(events))
	for _, ev := range events {
		if ev.Seq > sub.lastSeq {
			missed = append(missed, ev)
		}
	}
	if n := len(missed); n > 0 {
		sub.lastSeq = missed[n-1].Seq
	}
	sub.lagging.Store(false)
	return missed, nil
}

func (d *Dispatcher) remove(sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.subs[sub.target]
	delete(set, sub.id)
	if len(set) == 0 {
		delete(d.subs, sub.target)
	}
}
