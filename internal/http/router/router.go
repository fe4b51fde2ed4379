package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courier-dispatch/internal/http/handlers"
	obs "courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/logx"
)

// RequestTimeout bounds every API request except the websocket upgrade.
const RequestTimeout = 5 * time.Second

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	logger logx.Logger,
	h *handlers.Handlers,
	orders *handlers.OrderHandler,
	agents *handlers.AgentHandler,
	notes *handlers.NotificationHandler,
	ws http.Handler,
	limiter *ratelimit.Middleware,
) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	if limiter == nil {
		limiter = ratelimit.New(logger, nil, nil)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(h.NotFound))

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware)
		r.Use(obs.Observability(logger))
		r.Use(limiter.Handler())

		if ws != nil {
			r.Method(http.MethodGet, "/ws", ws)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(RequestTimeout))

			r.Route("/orders/{id}", func(r chi.Router) {
				r.Post("/accept", orders.Accept)
				r.Post("/reject", orders.Reject)
				r.Post("/ready", orders.Ready)
				r.Put("/status", orders.UpdateStatus)
			})
			r.Route("/agents/{id}", func(r chi.Router) {
				r.Put("/online-status", agents.SetOnline)
				r.Put("/location", agents.UpdateLocation)
				r.Get("/available-orders", agents.AvailableOrders)
			})
			r.Get("/notifications", notes.List)
			r.Post("/notifications/{id}/ack", notes.Ack)
		})
	})

	return r
}
