package handlers

import (
	"context"
	"net/http"
	"time"

	"courier-dispatch/internal/logx"
)

const healthcheckTimeout = 2 * time.Second

// Check probes one dependency for HEAD /healthcheck.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Handlers holds the service-level endpoints.
type Handlers struct {
	Logger logx.Logger
	checks []Check
}

// New creates a Handlers instance. A nil logger is replaced with a no-op one.
func New(logger logx.Logger, checks ...Check) *Handlers {
	return &Handlers{Logger: logx.OrNop(logger), checks: checks}
}

// Ping handles GET /ping and returns 200 with {"message":"pong"}.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"message": "pong"})
}

// HealthcheckHead handles HEAD /healthcheck: 204 when every dependency
// answers, 503 otherwise.
func (h *Handlers) HealthcheckHead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	for _, c := range h.checks {
		if err := c.Probe(ctx); err != nil {
			h.Logger.Warn("healthcheck failed",
				logx.String("request_id", reqID(r.Context())),
				logx.String("dependency", c.Name),
				logx.Err(err),
			)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotFound returns a JSON 404 error for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(h.Logger, w, r, http.StatusNotFound, "route not found")
}
