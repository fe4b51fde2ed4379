package store

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

type orderStore interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error)
	ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error)
	ListForAgent(ctx context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the backoff of RetryingOrders.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingOrders retries order reads that failed with
// apperr.ErrDependencyUnavailable. Writes are never retried.
type RetryingOrders struct {
	next    orderStore
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingOrders wraps next. It returns nil when next is nil.
func NewRetryingOrders(next orderStore, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingOrders {
	if next == nil {
		return nil
	}
	logger = logx.OrNop(logger)
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingOrders{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Create passes through.
func (r *RetryingOrders) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	return r.next.Create(ctx, o)
}

// UpdateStatus passes through.
func (r *RetryingOrders) UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error) {
	return r.next.UpdateStatus(ctx, tr)
}

// Get retries transient failures.
func (r *RetryingOrders) Get(ctx context.Context, id string) (domain.Order, error) {
	return retry(ctx, r, "Get", func() (domain.Order, error) {
		return r.next.Get(ctx, id)
	})
}

// ListByStatus retries transient failures.
func (r *RetryingOrders) ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	return retry(ctx, r, "ListByStatus", func() ([]domain.Order, error) {
		return r.next.ListByStatus(ctx, statuses...)
	})
}

// ListForAgent retries transient failures.
func (r *RetryingOrders) ListForAgent(ctx context.Context, agentID int64, statuses ...domain.OrderStatus) ([]domain.Order, error) {
	return retry(ctx, r, "ListForAgent", func() ([]domain.Order, error) {
		return r.next.ListForAgent(ctx, agentID, statuses...)
	})
}

func retry[T any](ctx context.Context, r *RetryingOrders, method string, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("order store retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return zero, lastErr
}

func isRetryable(err error) bool {
	return errors.Is(err, apperr.ErrDependencyUnavailable)
}

// backoff doubles base per attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max || d < 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
