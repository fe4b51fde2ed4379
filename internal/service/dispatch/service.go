// Package dispatch wires matching, claims and notifications together in
// response to external triggers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Deps groups the collaborators of Service.
type Deps struct {
	Orders   orderStore
	Agents   agentStore
	Geo      geoIndex
	Registry registry
	Matcher  orderMatcher
	Arbiter  claimArbiter
	Notifier notifier
	Mirror   locationMirror // optional
	Stale    counter        // optional
}

// Service is the dispatch orchestrator.
type Service struct {
	orders   orderStore
	agents   agentStore
	geo      geoIndex
	registry registry
	matcher  orderMatcher
	arbiter  claimArbiter
	notifier notifier
	mirror   locationMirror
	stale    counter

	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a Service.
func NewService(deps Deps, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		orders:           deps.Orders,
		agents:           deps.Agents,
		geo:              deps.Geo,
		registry:         deps.Registry,
		matcher:          deps.Matcher,
		arbiter:          deps.Arbiter,
		notifier:         deps.Notifier,
		mirror:           deps.Mirror,
		stale:            deps.Stale,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// RegisterOrder stores an order announced by an upstream system and matches
// it. Announcing a known order again only re-triggers matching.
func (s *Service) RegisterOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if o.Status != domain.OrderPending {
		return domain.Order{}, fmt.Errorf("new order in status %s: %w", o.Status, apperr.ErrInvalid)
	}

	cctx, cancel := s.withTimeout(ctx)
	_, err := s.orders.Create(cctx, o)
	cancel()
	if err != nil && !errors.Is(err, apperr.ErrConflict) {
		return domain.Order{}, err
	}
	return s.OrderReady(ctx, o.ID)
}

// OrderReady runs matching for a pending order.
func (s *Service) OrderReady(ctx context.Context, orderID string) (domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return s.matcher.OnOrderReady(ctx, orderID)
}

// SetOnline switches an agent on or off duty. Going online requires an
// active account. The agent's candidate sets are re-evaluated before return.
func (s *Service) SetOnline(ctx context.Context, agentID int64, online bool) (domain.Availability, error) {
	if agentID <= 0 {
		return domain.Availability{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	agent, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return domain.Availability{}, err
	}
	if online && agent.Approval != domain.ApprovalActive {
		return domain.Availability{}, fmt.Errorf("agent %d is %s: %w", agentID, agent.Approval, apperr.ErrNotEligible)
	}

	if _, known := s.registry.Snapshot(agentID); !known {
		active, err := s.orders.ListForAgent(ctx, agentID, domain.OrderAssigned, domain.OrderInProgress)
		if err != nil {
			return domain.Availability{}, err
		}
		if err := s.registry.Track(agentID, agent.Capacity, len(active)); err != nil {
			return domain.Availability{}, err
		}
	} else if err := s.registry.Track(agentID, agent.Capacity, 0); err != nil {
		return domain.Availability{}, err
	}

	if err := s.agents.UpdateOnline(ctx, agentID, online); err != nil {
		return domain.Availability{}, err
	}
	changed, err := s.registry.SetOnline(agentID, online)
	if err != nil {
		return domain.Availability{}, err
	}

	if online {
		err = s.matcher.OnAgentBecameEligible(ctx, agentID)
	} else {
		err = s.matcher.OnAgentOffline(ctx, agentID)
		s.dropMirroredLocation(ctx, agentID)
	}
	if err != nil {
		s.logger.Warn("re-evaluate after online change",
			logx.Int64("agent_id", agentID),
			logx.Bool("online", online),
			logx.Err(err),
		)
	}

	if changed {
		s.logger.Info("agent online status changed",
			logx.String("event", "agent_online_changed"),
			logx.Int64("agent_id", agentID),
			logx.Bool("online", online),
		)
		s.emit(ctx, domain.EventOnlineStatusChanged, domain.OnlinePayload{AgentID: agentID, Online: online}, domain.AgentAudience(agentID))
	}

	snap, _ := s.registry.Snapshot(agentID)
	return snap, nil
}

// UpdateLocation applies a position report. It reports false when the
// report was older than the recorded one and therefore dropped.
func (s *Service) UpdateLocation(ctx context.Context, agentID int64, p domain.Point, ts time.Time) (bool, error) {
	if ts.IsZero() {
		ts = s.now()
	}

	err := s.geo.UpsertLocation(agentID, p.Lat, p.Lng, ts)
	if errors.Is(err, apperr.ErrStaleUpdate) {
		if s.stale != nil {
			s.stale.Inc()
		}
		s.logger.Debug("stale location update dropped",
			logx.Int64("agent_id", agentID),
			logx.Time("ts", ts),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if s.mirror != nil {
		if err := s.mirror.Save(ctx, agentID, domain.Location{Point: p, RecordedAt: ts}); err != nil {
			s.logger.Warn("mirror location",
				logx.Int64("agent_id", agentID),
				logx.Err(err),
			)
		}
	}
	if err := s.matcher.OnAgentBecameEligible(ctx, agentID); err != nil {
		s.logger.Warn("re-evaluate after location update",
			logx.Int64("agent_id", agentID),
			logx.Err(err),
		)
	}
	return true, nil
}

// Accept resolves an agent's claim on an order and announces a win.
func (s *Service) Accept(ctx context.Context, orderID string, agentID int64) (domain.ClaimResult, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.ClaimResult{}, err
	}

	res, err := s.arbiter.TryClaim(ctx, orderID, agentID)
	if err != nil || !res.Won() {
		return res, err
	}

	s.matcher.Forget(orderID)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	s.emit(ctx, domain.EventOrderAssigned, domain.NewOrderPayload(res.Order), audiencesOf(res.Order, agentID)...)
	return res, nil
}

// Reject removes the agent from the order's candidates.
func (s *Service) Reject(ctx context.Context, orderID string, agentID int64) (domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if agentID <= 0 {
		return domain.Order{}, apperr.ErrInvalid
	}
	return s.matcher.Reject(ctx, orderID, agentID)
}

// UpdateOrderStatus applies in_progress, delivered or cancelled. When by is
// set it must be the assigned agent. Repeating the current status is a no-op.
// Terminal transitions release the agent's slot.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus, by *int64) (domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	switch next {
	case domain.OrderInProgress, domain.OrderDelivered, domain.OrderCancelled:
	default:
		return domain.Order{}, fmt.Errorf("status %q: %w", next, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if by != nil && !cur.AssignedTo(*by) {
		return domain.Order{}, apperr.ErrForbidden
	}
	if cur.Status == next {
		return cur, nil
	}
	if !domain.CanTransition(cur.Status, next) {
		return domain.Order{}, fmt.Errorf("order %s is %s: %w", orderID, cur.Status, apperr.ErrConflict)
	}

	updated, err := s.orders.UpdateStatus(ctx, domain.StatusTransition{
		OrderID:  orderID,
		Expected: cur.Status,
		Next:     next,
	})
	if err != nil {
		return domain.Order{}, err
	}

	if next.Terminal() {
		s.matcher.Forget(orderID)
		if cur.AssignedAgentID != nil {
			s.release(ctx, *cur.AssignedAgentID)
		}
	}

	s.logger.Info("order status changed",
		logx.String("event", "order_status_changed"),
		logx.String("order_id", orderID),
		logx.String("from", string(cur.Status)),
		logx.String("to", string(next)),
	)

	payload := domain.NewOrderPayload(updated)
	payload.AssignedAgentID = cur.AssignedAgentID
	var agentID int64
	if cur.AssignedAgentID != nil {
		agentID = *cur.AssignedAgentID
	}
	s.emit(ctx, domain.EventOrderStatusChanged, payload, audiencesOf(updated, agentID)...)
	return updated, nil
}

// AvailableOrders lists the orders the agent may accept, newest first.
func (s *Service) AvailableOrders(ctx context.Context, agentID int64) ([]domain.Order, error) {
	if agentID <= 0 {
		return nil, apperr.ErrInvalid
	}
	return s.matcher.AvailableOrdersFor(ctx, agentID)
}

// Notifications returns and consumes undelivered events of the audience.
func (s *Service) Notifications(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.notifier.Poll(ctx, target, limit)
}

// AckNotification marks an event delivered on behalf of the audience. Order
// room events may be acknowledged by the order's parties only.
func (s *Service) AckNotification(ctx context.Context, caller domain.Audience, id string) error {
	eventID, err := parseEventID(id)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ev, err := s.notifier.Event(ctx, eventID)
	if err != nil {
		return err
	}
	switch {
	case ev.Target == caller:
	case ev.Target.Kind == domain.AudienceOrder:
		o, err := s.orders.Get(ctx, ev.Target.Key)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return apperr.ErrForbidden
		case err != nil:
			return err
		}
		if !isParty(o, caller) {
			return apperr.ErrForbidden
		}
	default:
		return apperr.ErrForbidden
	}
	return s.notifier.MarkDelivered(ctx, eventID)
}

// WatchOrder returns the order when caller is one of its parties: the
// assigned agent, the customer or the pharmacy.
func (s *Service) WatchOrder(ctx context.Context, caller domain.Audience, orderID string) (domain.Order, error) {
	id, err := validateOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !isParty(o, caller) {
		return domain.Order{}, apperr.ErrForbidden
	}
	return o, nil
}

// isParty reports whether caller is the order's assigned agent, customer or
// pharmacy.
func isParty(o domain.Order, caller domain.Audience) bool {
	var agentID int64
	if o.AssignedAgentID != nil {
		agentID = *o.AssignedAgentID
	}
	for _, a := range audiencesOf(o, agentID) {
		if a == caller && a.Kind != domain.AudienceOrder {
			return true
		}
	}
	return false
}

// Recheck runs a matching sweep over open orders.
func (s *Service) Recheck(ctx context.Context) error {
	return s.matcher.Sweep(ctx)
}

func (s *Service) release(ctx context.Context, agentID int64) {
	if err := s.registry.DecrementLoad(agentID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.logger.Error("release agent load",
			logx.Int64("agent_id", agentID),
			logx.Err(err),
		)
		return
	}
	if err := s.matcher.OnAgentBecameEligible(ctx, agentID); err != nil {
		s.logger.Warn("re-evaluate after release",
			logx.Int64("agent_id", agentID),
			logx.Err(err),
		)
	}
}

func (s *Service) dropMirroredLocation(ctx context.Context, agentID int64) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Delete(ctx, agentID); err != nil {
		s.logger.Warn("drop mirrored location",
			logx.Int64("agent_id", agentID),
			logx.Err(err),
		)
	}
}

// emit publishes one event per audience. The state change has already been
// committed at this point, so failures are logged and not returned.
func (s *Service) emit(ctx context.Context, typ domain.EventType, payload any, targets ...domain.Audience) {
	now := s.now()
	for _, target := range targets {
		ev, err := domain.NewNotificationEvent(target, typ, payload, now)
		if err == nil {
			err = s.notifier.Publish(ctx, ev)
		}
		if err != nil {
			s.logger.Error("publish notification",
				logx.String("type", string(typ)),
				logx.String("target", target.String()),
				logx.Err(err),
			)
		}
	}
}

// audiencesOf lists who hears about an order: its agent, customer, pharmacy
// and order room. Zero ids are skipped.
func audiencesOf(o domain.Order, agentID int64) []domain.Audience {
	out := make([]domain.Audience, 0, 4)
	if agentID > 0 {
		out = append(out, domain.AgentAudience(agentID))
	}
	if o.CustomerID > 0 {
		out = append(out, domain.CustomerAudience(o.CustomerID))
	}
	if o.PharmacyID > 0 {
		out = append(out, domain.PharmacyAudience(o.PharmacyID))
	}
	return append(out, domain.OrderAudience(o.ID))
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", apperr.ErrInvalid
	}
	return orderID, nil
}

func parseEventID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("event id %q: %w", raw, apperr.ErrInvalid)
	}
	return id, nil
}
