package claim

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/domain"
)

type orderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, tr domain.StatusTransition) (domain.Order, error)
}

type agentStore interface {
	Get(ctx context.Context, id int64) (domain.Agent, error)
}

type loadRegistry interface {
	CanAcceptMore(agentID int64) bool
	IncrementLoad(agentID int64) error
	DecrementLoad(agentID int64) error
}

type candidateChecker interface {
	IsCandidate(o domain.Order, agentID int64) (domain.Candidate, bool)
}

type orderLocker interface {
	Lock(key string) (unlock func())
}

type outcomeCounter interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}
