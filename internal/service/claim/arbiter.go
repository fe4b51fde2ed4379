// Package claim resolves concurrent accept attempts so that an order is
// assigned to at most one agent.
package claim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Reasons reported with non winning outcomes.
const (
	ReasonTaken        = "order no longer available"
	ReasonUnknownAgent = "agent not found"
	ReasonInactive     = "agent is not active"
	ReasonNoCapacity   = "agent offline or at capacity"
	ReasonNotAvailable = "order is not available"
	ReasonNotCandidate = "agent is not a candidate for this order"
)

// Arbiter serializes claims per order in process and relies on the order
// store's conditional update across processes. No lock spanning more than
// one order is ever taken.
type Arbiter struct {
	orders     orderStore
	agents     agentStore
	registry   loadRegistry
	candidates candidateChecker
	locks      orderLocker
	outcomes   outcomeCounter
	logger     logx.Logger

	operationTimeout time.Duration
	now              func() time.Time
}

// NewArbiter creates an Arbiter. outcomes may be nil.
func NewArbiter(
	orders orderStore,
	agents agentStore,
	reg loadRegistry,
	candidates candidateChecker,
	locks orderLocker,
	outcomes outcomeCounter,
	timeout time.Duration,
	logger logx.Logger,
) *Arbiter {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Arbiter{
		orders:           orders,
		agents:           agents,
		registry:         reg,
		candidates:       candidates,
		locks:            locks,
		outcomes:         outcomes,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (a *Arbiter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.operationTimeout)
}

// TryClaim attempts to assign orderID to agentID. Losing the race is an
// outcome, not an error: errors are returned only for invalid input, an
// unknown order and store failures.
func (a *Arbiter) TryClaim(ctx context.Context, orderID string, agentID int64) (domain.ClaimResult, error) {
	attempt := domain.ClaimAttempt{OrderID: strings.TrimSpace(orderID), AgentID: agentID, AttemptedAt: a.now()}
	if attempt.OrderID == "" || attempt.AgentID <= 0 {
		return domain.ClaimResult{}, apperr.ErrInvalid
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.claim(ctx, attempt)
	if err != nil {
		a.logger.Warn("claim failed",
			logx.String("order_id", attempt.OrderID),
			logx.Int64("agent_id", attempt.AgentID),
			logx.Err(err),
		)
		return domain.ClaimResult{}, err
	}

	if a.outcomes != nil {
		a.outcomes.WithLabelValues(string(res.Outcome)).Inc()
	}
	a.logger.Info("claim resolved",
		logx.String("event", "claim_resolved"),
		logx.String("order_id", attempt.OrderID),
		logx.Int64("agent_id", attempt.AgentID),
		logx.String("outcome", string(res.Outcome)),
		logx.String("reason", res.Reason),
		logx.Duration("took", a.now().Sub(attempt.AttemptedAt)),
	)
	return res, nil
}

func (a *Arbiter) claim(ctx context.Context, at domain.ClaimAttempt) (domain.ClaimResult, error) {
	agent, err := a.agents.Get(ctx, at.AgentID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return notEligible(ReasonUnknownAgent), nil
	case err != nil:
		return domain.ClaimResult{}, err
	}
	if !agent.CanClaim() {
		return notEligible(ReasonInactive), nil
	}
	if !a.registry.CanAcceptMore(at.AgentID) {
		return notEligible(ReasonNoCapacity), nil
	}

	unlock := a.locks.Lock(at.OrderID)
	defer unlock()

	o, err := a.orders.Get(ctx, at.OrderID)
	if err != nil {
		return domain.ClaimResult{}, err
	}
	switch o.Status {
	case domain.OrderAssigned, domain.OrderInProgress, domain.OrderDelivered:
		return domain.ClaimResult{Outcome: domain.ClaimAlreadyAssigned, Reason: ReasonTaken}, nil
	case domain.OrderAvailable:
	default:
		return notEligible(ReasonNotAvailable), nil
	}
	if _, ok := a.candidates.IsCandidate(o, at.AgentID); !ok {
		return notEligible(ReasonNotCandidate), nil
	}

	if err := a.registry.IncrementLoad(at.AgentID); err != nil {
		// Claims on other orders run under their own locks and may take the
		// agent's last slot between the eligibility check and here.
		if errors.Is(err, apperr.ErrCapacityExceeded) {
			a.logger.Warn("agent capacity taken by a concurrent claim",
				logx.String("order_id", at.OrderID),
				logx.Int64("agent_id", at.AgentID),
			)
			return notEligible(ReasonNoCapacity), nil
		}
		return domain.ClaimResult{}, err
	}

	agentID := at.AgentID
	assigned, err := a.orders.UpdateStatus(ctx, domain.StatusTransition{
		OrderID:  at.OrderID,
		Expected: domain.OrderAvailable,
		Next:     domain.OrderAssigned,
		Agent:    &agentID,
	})
	if err != nil {
		a.release(at.AgentID)
		if errors.Is(err, apperr.ErrConflict) {
			return domain.ClaimResult{Outcome: domain.ClaimAlreadyAssigned, Reason: ReasonTaken}, nil
		}
		return domain.ClaimResult{}, fmt.Errorf("assign order %s: %w", at.OrderID, err)
	}

	return domain.ClaimResult{Outcome: domain.ClaimAssigned, Order: assigned}, nil
}

func (a *Arbiter) release(agentID int64) {
	if err := a.registry.DecrementLoad(agentID); err != nil {
		a.logger.Error("release reserved load",
			logx.Int64("agent_id", agentID),
			logx.Err(err),
		)
	}
}

func notEligible(reason string) domain.ClaimResult {
	return domain.ClaimResult{Outcome: domain.ClaimNotEligible, Reason: reason}
}
