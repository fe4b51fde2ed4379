package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// NotificationRepo is an in-memory event store. Sequence numbers are
// assigned on append and are strictly increasing across all targets.
type NotificationRepo struct {
	mu     sync.RWMutex
	seq    int64
	events []domain.NotificationEvent
	byID   map[uuid.UUID]int
}

// NewNotificationRepo creates an empty NotificationRepo.
func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{byID: make(map[uuid.UUID]int)}
}

// Append stores an event and returns it with its sequence number.
func (r *NotificationRepo) Append(_ context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error) {
	if ev.ID == uuid.Nil || ev.Type == "" || ev.Target.Key == "" {
		return domain.NotificationEvent{}, apperr.ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[ev.ID]; ok {
		return domain.NotificationEvent{}, apperr.ErrConflict
	}
	r.seq++
	ev.Seq = r.seq
	ev.Delivered = false
	r.byID[ev.ID] = len(r.events)
	r.events = append(r.events, ev)
	return ev, nil
}

// Get returns the event by id.
func (r *NotificationRepo) Get(_ context.Context, id uuid.UUID) (domain.NotificationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return domain.NotificationEvent{}, apperr.ErrNotFound
	}
	return r.events[i], nil
}

// ListUndelivered returns up to limit undelivered events of the target in
// sequence order. A non-positive limit means no limit.
func (r *NotificationRepo) ListUndelivered(_ context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.NotificationEvent, 0)
	for _, ev := range r.events {
		if ev.Delivered || ev.Target != target {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkDelivered flags the events as delivered and returns how many of the
// ids exist. Already delivered events are counted too.
func (r *NotificationRepo) MarkDelivered(_ context.Context, ids ...uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		i, ok := r.byID[id]
		if !ok {
			continue
		}
		r.events[i].Delivered = true
		n++
	}
	return n, nil
}
