package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Subscription is a live registration created by Dispatcher.Subscribe.
// Its handler runs on a dedicated goroutine, one event at a time.
type Subscription struct {
	id      uint64
	target  domain.Audience
	d       *Dispatcher
	queue   chan domain.NotificationEvent
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	// lastSeq is the seq of the newest queued event, guarded by the target lock.
	lastSeq int64
	lagging atomic.Bool
}

// Target returns the subscribed audience.
func (s *Subscription) Target() domain.Audience { return s.target }

// Close unregisters the subscription. Safe to call more than once and from
// within the handler.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.d.remove(s)
		s.cancel()
	})
}

// Done is closed once the handler goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.stopped }

func (s *Subscription) run(ctx context.Context, handler Handler) {
	defer close(s.stopped)
	for {
		// Pushes stop once lagging, so the queue only drains from here on.
		if s.lagging.Load() && len(s.queue) == 0 {
			if !s.catchUp(ctx, handler) {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			return
		case ev := <-s.queue:
			if ctx.Err() != nil {
				return
			}
			s.deliver(ctx, handler, ev)
		}
	}
}

// catchUp replays what the live queue missed. It reports false when the
// subscription is closing.
func (s *Subscription) catchUp(ctx context.Context, handler Handler) bool {
	missed, err := s.d.resync(ctx, s)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.d.logger.Warn("subscription resync failed",
			logx.String("target", s.target.String()),
			logx.Err(err),
		)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(resyncBackoff):
			return true
		}
	}
	for _, ev := range missed {
		if ctx.Err() != nil {
			return false
		}
		s.deliver(ctx, handler, ev)
	}
	return true
}

func (s *Subscription) deliver(ctx context.Context, handler Handler, ev domain.NotificationEvent) {
	if err := handler(ctx, ev); err != nil {
		s.d.logger.Warn("push failed",
			logx.String("target", s.target.String()),
			logx.String("event_id", ev.ID.String()),
			logx.Err(err),
		)
	}
}
