// Package ws pushes notification events to connected clients over
// websockets and accepts location updates, acks and order room joins.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

// Config tunes connection keep-alive and buffering.
type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultConfig returns the keep-alive settings used in production.
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

// Hub upgrades requests and tracks live connections.
type Hub struct {
	events   subscriber
	svc      dispatchService
	cfg      Config
	logger   logx.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewHub creates a Hub.
func NewHub(events subscriber, svc dispatchService, cfg Config, logger logx.Logger) *Hub {
	logger = logx.OrNop(logger)
	def := DefaultConfig()
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	return &Hub{
		events: events,
		svc:    svc,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*conn]struct{}),
	}
}

// ServeHTTP upgrades an identified request and subscribes the caller's room.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		var err error
		if actor, err = identity.FromRequest(r); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Warn("websocket upgrade failed", logx.String("actor", actor.String()), logx.Err(err))
		return
	}

	// The request context ends when ServeHTTP returns.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &conn{
		hub:    h,
		ws:     ws,
		actor:  actor,
		send:   make(chan outbound, h.cfg.SendBuffer),
		ctx:    ctx,
		cancel: cancel,
		rooms:  make(map[domain.Audience]func()),
		logger: h.logger.With(logx.String("actor", actor.String())),
	}
	if err := c.join(actor.Audience()); err != nil {
		h.logger.Error("subscribe on connect", logx.String("actor", actor.String()), logx.Err(err))
		c.shutdown()
		return
	}
	h.add(c)

	go c.writePump()
	go c.readPump()
}

// Connections returns the number of live connections.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.shutdown()
	}
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func errorText(err error) string {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return "invalid request"
	case errors.Is(err, apperr.ErrNotFound):
		return "not found"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperr.ErrNotEligible):
		return "not eligible"
	case errors.Is(err, apperr.ErrDependencyUnavailable):
		return "temporarily unavailable"
	default:
		return "internal error"
	}
}
