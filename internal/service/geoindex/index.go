package geoindex

import (
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// Index keeps the last reported location of every agent and answers radius
// queries. Hidden agents (gone offline) keep their timestamp watermark so a
// delayed report cannot roll their position back, but never show up in
// queries until Activate is called.
type Index struct {
	mu         sync.RWMutex
	entries    map[int64]*entry
	staleAfter time.Duration
	now        func() time.Time
}

type entry struct {
	loc    domain.Location
	hidden bool
}

// Option configures an Index.
type Option func(*Index)

// WithStaleAfter hides locations older than d from queries. Zero disables expiry.
func WithStaleAfter(d time.Duration) Option {
	return func(i *Index) { i.staleAfter = d }
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(i *Index) {
		if now != nil {
			i.now = now
		}
	}
}

// New creates an empty Index.
func New(opts ...Option) *Index {
	i := &Index{
		entries: make(map[int64]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// UpsertLocation records a position report. Reports older than the last
// recorded one fail with apperr.ErrStaleUpdate and leave the index untouched.
func (i *Index) UpsertLocation(agentID int64, lat, lng float64, ts time.Time) error {
	p := domain.Point{Lat: lat, Lng: lng}
	if agentID <= 0 || !p.Valid() || ts.IsZero() {
		return apperr.ErrInvalid
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	e, ok := i.entries[agentID]
	if !ok {
		i.entries[agentID] = &entry{loc: domain.Location{Point: p, RecordedAt: ts}}
		return nil
	}
	if ts.Before(e.loc.RecordedAt) {
		return apperr.ErrStaleUpdate
	}
	e.loc = domain.Location{Point: p, RecordedAt: ts}
	return nil
}

// RemoveAgent hides the agent from every subsequent query.
func (i *Index) RemoveAgent(agentID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if e, ok := i.entries[agentID]; ok {
		e.hidden = true
		return
	}
	i.entries[agentID] = &entry{hidden: true}
}

// Activate makes a previously removed agent visible again.
func (i *Index) Activate(agentID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if e, ok := i.entries[agentID]; ok {
		e.hidden = false
	}
}

// Location returns the agent's last visible, fresh location.
func (i *Index) Location(agentID int64) (domain.Location, bool) {
	now := i.now()

	i.mu.RLock()
	defer i.mu.RUnlock()

	e, ok := i.entries[agentID]
	if !ok || !i.visible(e, now) {
		return domain.Location{}, false
	}
	return e.loc, true
}

// QueryWithinRadius returns the visible agents whose haversine distance to
// (lat, lng) is at most radiusMeters, nearest first, ties by agent id.
func (i *Index) QueryWithinRadius(lat, lng, radiusMeters float64) []domain.Candidate {
	center := domain.Point{Lat: lat, Lng: lng}
	if !center.Valid() || radiusMeters < 0 {
		return nil
	}
	now := i.now()

	i.mu.RLock()
	out := make([]domain.Candidate, 0)
	for id, e := range i.entries {
		if !i.visible(e, now) {
			continue
		}
		d := center.DistanceTo(e.loc.Point)
		if d <= radiusMeters {
			out = append(out, domain.Candidate{AgentID: id, DistanceMeters: d})
		}
	}
	i.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].DistanceMeters == out[b].DistanceMeters {
			return out[a].AgentID < out[b].AgentID
		}
		return out[a].DistanceMeters < out[b].DistanceMeters
	})
	return out
}

// Len returns the number of tracked agents, hidden ones included.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

func (i *Index) visible(e *entry, now time.Time) bool {
	if e.hidden || e.loc.RecordedAt.IsZero() {
		return false
	}
	if i.staleAfter > 0 && now.Sub(e.loc.RecordedAt) > i.staleAfter {
		return false
	}
	return true
}
