package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// DefaultRadiusMeters is the matching radius used when none is configured.
const DefaultRadiusMeters = 5000.0

// Matcher decides which agents may see an order. Candidate sets are never
// cached: every decision recomputes them from the geo index and registry.
// The matcher only remembers rejections and which agents were already
// pushed a given order.
type Matcher struct {
	orders    orderStore
	geo       geoIndex
	registry  registry
	publisher publisher
	locks     orderLocker
	logger    logx.Logger

	radius           float64
	operationTimeout time.Duration
	now              func() time.Time

	mu       sync.Mutex
	rejected map[string]map[int64]struct{}
	offered  map[string]map[int64]struct{}
}

// Config holds Matcher tunables.
type Config struct {
	RadiusMeters     float64
	OperationTimeout time.Duration
}

// New creates a Matcher. locks must be shared with the claim arbiter so that
// status changes of one order are serialized in process.
func New(orders orderStore, geo geoIndex, reg registry, pub publisher, locks orderLocker, cfg Config, logger logx.Logger) *Matcher {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = DefaultRadiusMeters
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Matcher{
		orders:           orders,
		geo:              geo,
		registry:         reg,
		publisher:        pub,
		locks:            locks,
		logger:           logger,
		radius:           cfg.RadiusMeters,
		operationTimeout: cfg.OperationTimeout,
		now:              func() time.Time { return time.Now().UTC() },
		rejected:         make(map[string]map[int64]struct{}),
		offered:          make(map[string]map[int64]struct{}),
	}
}

func (m *Matcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.operationTimeout)
}

// Radius returns the matching radius in meters.
func (m *Matcher) Radius() float64 { return m.radius }

// Candidates computes the current candidate set of an order, nearest first.
func (m *Matcher) Candidates(o domain.Order) []domain.Candidate {
	near := m.geo.QueryWithinRadius(o.Pickup.Lat, o.Pickup.Lng, m.radius)

	out := make([]domain.Candidate, 0, len(near))
	for _, c := range near {
		if m.hasRejected(o.ID, c.AgentID) {
			continue
		}
		if !m.registry.CanAcceptMore(c.AgentID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsCandidate checks a single agent against the order without scanning the
// whole index.
func (m *Matcher) IsCandidate(o domain.Order, agentID int64) (domain.Candidate, bool) {
	if !m.registry.CanAcceptMore(agentID) || m.hasRejected(o.ID, agentID) {
		return domain.Candidate{}, false
	}
	loc, ok := m.geo.Location(agentID)
	if !ok {
		return domain.Candidate{}, false
	}
	d := o.Pickup.DistanceTo(loc.Point)
	if d > m.radius {
		return domain.Candidate{}, false
	}
	return domain.Candidate{AgentID: agentID, DistanceMeters: d}, true
}

// OnOrderReady matches a pending order. With candidates the order becomes
// available and every candidate is offered it; without, it stays pending
// until Sweep or an eligibility change finds someone.
func (m *Matcher) OnOrderReady(ctx context.Context, orderID string) (domain.Order, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	o, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	switch o.Status {
	case domain.OrderPending:
		return m.promote(ctx, o)
	case domain.OrderAvailable:
		m.offer(ctx, o, m.Candidates(o))
		return o, nil
	default:
		return o, fmt.Errorf("order %s is %s: %w", o.ID, o.Status, apperr.ErrConflict)
	}
}

// AvailableOrdersFor lists available orders the agent is a candidate for,
// newest first.
func (m *Matcher) AvailableOrdersFor(ctx context.Context, agentID int64) ([]domain.Order, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if !m.registry.CanAcceptMore(agentID) {
		return []domain.Order{}, nil
	}

	orders, err := m.orders.ListByStatus(ctx, domain.OrderAvailable)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if _, ok := m.IsCandidate(o, agentID); ok {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// OnAgentBecameEligible re-evaluates open orders around the agent after a
// location update or online transition.
func (m *Matcher) OnAgentBecameEligible(ctx context.Context, agentID int64) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if !m.registry.CanAcceptMore(agentID) {
		return nil
	}
	if _, ok := m.geo.Location(agentID); !ok {
		return nil
	}

	orders, err := m.orders.ListByStatus(ctx, domain.OrderPending, domain.OrderAvailable)
	if err != nil {
		return err
	}
	for _, o := range orders {
		c, ok := m.IsCandidate(o, agentID)
		if !ok {
			continue
		}
		switch o.Status {
		case domain.OrderPending:
			if _, err := m.promote(ctx, o); err != nil {
				return err
			}
		case domain.OrderAvailable:
			m.offer(ctx, o, []domain.Candidate{c})
		}
	}
	return nil
}

// OnAgentOffline re-evaluates every order the agent was offered. Orders left
// without candidates go back to pending.
func (m *Matcher) OnAgentOffline(ctx context.Context, agentID int64) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	m.mu.Lock()
	var ids []string
	for orderID, agents := range m.offered {
		if _, ok := agents[agentID]; ok {
			ids = append(ids, orderID)
		}
	}
	m.mu.Unlock()

	sort.Strings(ids)
	for _, id := range ids {
		o, err := m.orders.Get(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			m.Forget(id)
			continue
		}
		if err != nil {
			return err
		}
		if err := m.recheck(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// Reject removes the agent from the order's candidate set for good. The
// order status is untouched unless nobody is left, in which case it reverts
// to pending. Repeated rejections are no-ops.
func (m *Matcher) Reject(ctx context.Context, orderID string, agentID int64) (domain.Order, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	o, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.OrderAvailable {
		return o, fmt.Errorf("order %s is %s: %w", o.ID, o.Status, apperr.ErrNotEligible)
	}

	m.mu.Lock()
	set, ok := m.rejected[orderID]
	if !ok {
		set = make(map[int64]struct{})
		m.rejected[orderID] = set
	}
	set[agentID] = struct{}{}
	delete(m.offered[orderID], agentID)
	m.mu.Unlock()

	if err := m.recheck(ctx, o); err != nil {
		return o, err
	}
	return m.orders.Get(ctx, orderID)
}

// Sweep re-checks all pending and available orders. Pending orders with
// candidates are promoted, available ones without are demoted, new
// candidates of available orders are offered. State kept for orders that
// left matching is dropped.
func (m *Matcher) Sweep(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	orders, err := m.orders.ListByStatus(ctx, domain.OrderPending, domain.OrderAvailable)
	if err != nil {
		return err
	}

	open := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		open[o.ID] = struct{}{}
		switch o.Status {
		case domain.OrderPending:
			_, err = m.promote(ctx, o)
		case domain.OrderAvailable:
			err = m.recheck(ctx, o)
		}
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	for id := range m.rejected {
		if _, ok := open[id]; !ok {
			delete(m.rejected, id)
		}
	}
	for id := range m.offered {
		if _, ok := open[id]; !ok {
			delete(m.offered, id)
		}
	}
	m.mu.Unlock()
	return nil
}

// Forget drops rejection and offer state of an order that left matching.
func (m *Matcher) Forget(orderID string) {
	m.mu.Lock()
	delete(m.rejected, orderID)
	delete(m.offered, orderID)
	m.mu.Unlock()
}

// promote moves a pending order to available when it has candidates.
func (m *Matcher) promote(ctx context.Context, o domain.Order) (domain.Order, error) {
	unlock := m.locks.Lock(o.ID)
	candidates := m.Candidates(o)
	if len(candidates) == 0 {
		unlock()
		m.logger.Debug("order has no candidates",
			logx.String("order_id", o.ID),
			logx.Float64("radius_m", m.radius),
		)
		return o, nil
	}

	updated, err := m.orders.UpdateStatus(ctx, domain.StatusTransition{
		OrderID:  o.ID,
		Expected: domain.OrderPending,
		Next:     domain.OrderAvailable,
	})
	unlock()
	if errors.Is(err, apperr.ErrConflict) {
		// moved by someone else, reread and offer if it is open
		cur, gerr := m.orders.Get(ctx, o.ID)
		if gerr != nil {
			return o, gerr
		}
		if cur.Status == domain.OrderAvailable {
			m.offer(ctx, cur, m.Candidates(cur))
		}
		return cur, nil
	}
	if err != nil {
		return o, err
	}

	m.mu.Lock()
	delete(m.offered, o.ID)
	m.mu.Unlock()

	m.logger.Info("order available",
		logx.String("event", "order_available"),
		logx.String("order_id", updated.ID),
		logx.Int("candidates", len(candidates)),
	)
	m.offer(ctx, updated, candidates)
	return updated, nil
}

// recheck demotes an available order whose candidate set is empty and
// offers it to candidates that have not seen it yet.
func (m *Matcher) recheck(ctx context.Context, o domain.Order) error {
	if o.Status != domain.OrderAvailable {
		return nil
	}

	unlock := m.locks.Lock(o.ID)
	candidates := m.Candidates(o)
	if len(candidates) > 0 {
		unlock()
		m.offer(ctx, o, candidates)
		return nil
	}

	_, err := m.orders.UpdateStatus(ctx, domain.StatusTransition{
		OrderID:  o.ID,
		Expected: domain.OrderAvailable,
		Next:     domain.OrderPending,
	})
	unlock()
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.offered, o.ID)
	m.mu.Unlock()

	m.logger.Info("order back to pending",
		logx.String("event", "order_pending"),
		logx.String("order_id", o.ID),
	)
	return nil
}

// offer pushes new-available-order to candidates not yet offered this order.
func (m *Matcher) offer(ctx context.Context, o domain.Order, candidates []domain.Candidate) {
	for _, c := range candidates {
		if !m.markOffered(o.ID, c.AgentID) {
			continue
		}

		payload := domain.NewOrderPayload(o)
		dist := c.DistanceMeters
		payload.DistanceMeters = &dist

		ev, err := domain.NewNotificationEvent(domain.AgentAudience(c.AgentID), domain.EventNewAvailableOrder, payload, m.now())
		if err == nil {
			err = m.publisher.Publish(ctx, ev)
		}
		if err != nil {
			m.unmarkOffered(o.ID, c.AgentID)
			m.logger.Warn("offer not published",
				logx.String("order_id", o.ID),
				logx.Int64("agent_id", c.AgentID),
				logx.Err(err),
			)
		}
	}
}

func (m *Matcher) markOffered(orderID string, agentID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.offered[orderID]
	if !ok {
		set = make(map[int64]struct{})
		m.offered[orderID] = set
	}
	if _, seen := set[agentID]; seen {
		return false
	}
	set[agentID] = struct{}{}
	return true
}

func (m *Matcher) unmarkOffered(orderID string, agentID int64) {
	m.mu.Lock()
	delete(m.offered[orderID], agentID)
	m.mu.Unlock()
}

func (m *Matcher) hasRejected(orderID string, agentID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rejected[orderID][agentID]
	return ok
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
