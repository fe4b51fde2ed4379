package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

// stubUsecase fails the test on any call without a matching fn.
type stubUsecase struct {
	t *testing.T

	registerFn  func(ctx context.Context, o domain.Order) (domain.Order, error)
	readyFn     func(ctx context.Context, id string) (domain.Order, error)
	acceptFn    func(ctx context.Context, id string, agentID int64) (domain.ClaimResult, error)
	rejectFn    func(ctx context.Context, id string, agentID int64) (domain.Order, error)
	statusFn    func(ctx context.Context, id string, next domain.OrderStatus, by *int64) (domain.Order, error)
	watchFn     func(ctx context.Context, caller domain.Audience, id string) (domain.Order, error)
	onlineFn    func(ctx context.Context, agentID int64, online bool) (domain.Availability, error)
	locationFn  func(ctx context.Context, agentID int64, p domain.Point, ts time.Time) (bool, error)
	availableFn func(ctx context.Context, agentID int64) ([]domain.Order, error)
	pollFn      func(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error)
	ackFn       func(ctx context.Context, caller domain.Audience, id string) error
}

func (s *stubUsecase) unexpected(name string) {
	s.t.Helper()
	s.t.Fatalf("unexpected call to %s", name)
}

func (s *stubUsecase) RegisterOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if s.registerFn == nil {
		s.unexpected("RegisterOrder")
	}
	return s.registerFn(ctx, o)
}

func (s *stubUsecase) OrderReady(ctx context.Context, id string) (domain.Order, error) {
	if s.readyFn == nil {
		s.unexpected("OrderReady")
	}
	return s.readyFn(ctx, id)
}

func (s *stubUsecase) Accept(ctx context.Context, id string, agentID int64) (domain.ClaimResult, error) {
	if s.acceptFn == nil {
		s.unexpected("Accept")
	}
	return s.acceptFn(ctx, id, agentID)
}

func (s *stubUsecase) Reject(ctx context.Context, id string, agentID int64) (domain.Order, error) {
	if s.rejectFn == nil {
		s.unexpected("Reject")
	}
	return s.rejectFn(ctx, id, agentID)
}

func (s *stubUsecase) UpdateOrderStatus(ctx context.Context, id string, next domain.OrderStatus, by *int64) (domain.Order, error) {
	if s.statusFn == nil {
		s.unexpected("UpdateOrderStatus")
	}
	return s.statusFn(ctx, id, next, by)
}

func (s *stubUsecase) WatchOrder(ctx context.Context, caller domain.Audience, id string) (domain.Order, error) {
	if s.watchFn == nil {
		s.unexpected("WatchOrder")
	}
	return s.watchFn(ctx, caller, id)
}

func (s *stubUsecase) SetOnline(ctx context.Context, agentID int64, online bool) (domain.Availability, error) {
	if s.onlineFn == nil {
		s.unexpected("SetOnline")
	}
	return s.onlineFn(ctx, agentID, online)
}

func (s *stubUsecase) UpdateLocation(ctx context.Context, agentID int64, p domain.Point, ts time.Time) (bool, error) {
	if s.locationFn == nil {
		s.unexpected("UpdateLocation")
	}
	return s.locationFn(ctx, agentID, p, ts)
}

func (s *stubUsecase) AvailableOrders(ctx context.Context, agentID int64) ([]domain.Order, error) {
	if s.availableFn == nil {
		s.unexpected("AvailableOrders")
	}
	return s.availableFn(ctx, agentID)
}

func (s *stubUsecase) Notifications(ctx context.Context, target domain.Audience, limit int) ([]domain.NotificationEvent, error) {
	if s.pollFn == nil {
		s.unexpected("Notifications")
	}
	return s.pollFn(ctx, target, limit)
}

func (s *stubUsecase) AckNotification(ctx context.Context, caller domain.Audience, id string) error {
	if s.ackFn == nil {
		s.unexpected("AckNotification")
	}
	return s.ackFn(ctx, caller, id)
}

// newMux routes like the production router minus the outer middleware.
func newMux(uc *stubUsecase) http.Handler {
	logger := logx.Nop()
	orders := handlers.NewOrderHandler(logger, uc)
	agents := handlers.NewAgentHandler(logger, uc)
	notes := handlers.NewNotificationHandler(logger, uc)

	r := chi.NewRouter()
	r.Use(identity.Middleware)
	r.Post("/orders/{id}/accept", orders.Accept)
	r.Post("/orders/{id}/reject", orders.Reject)
	r.Post("/orders/{id}/ready", orders.Ready)
	r.Put("/orders/{id}/status", orders.UpdateStatus)
	r.Put("/agents/{id}/online-status", agents.SetOnline)
	r.Put("/agents/{id}/location", agents.UpdateLocation)
	r.Get("/agents/{id}/available-orders", agents.AvailableOrders)
	r.Get("/notifications", notes.List)
	r.Post("/notifications/{id}/ack", notes.Ack)
	return r
}

func do(t *testing.T, h http.Handler, method, path, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if actor != "" {
		req.Header.Set(identity.HeaderActor, actor)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
