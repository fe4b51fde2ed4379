package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

const maxPollLimit = 500

// NotificationHandler serves the polling fallback for clients without a
// websocket.
type NotificationHandler struct {
	uc     dispatchUsecase
	logger logx.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(logger logx.Logger, uc dispatchUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc, logger: logx.OrNop(logger)}
}

// List handles GET /notifications?limit=&order=. Without order it drains the
// caller's own room; with order it drains that order's room.
// @Summary Poll undelivered notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Max events"
// @Param order query string false "Order room to poll"
// @Success 200 {array} notificationDTO
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}
	if limit == 0 || limit > maxPollLimit {
		limit = maxPollLimit
	}

	target := actor.Audience()
	if orderID := strings.TrimSpace(q.Get("order")); orderID != "" {
		if _, err := h.uc.WatchOrder(r.Context(), actor.Audience(), orderID); err != nil {
			writeServiceError(h.logger, w, r, err)
			return
		}
		target = domain.OrderAudience(orderID)
	}

	list, err := h.uc.Notifications(r.Context(), target, limit)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, notificationsToResponse(list))
}

// Ack handles POST /notifications/{id}/ack.
// @Summary Acknowledge a pushed notification
// @Tags notifications
// @Param id path string true "Event ID"
// @Success 204
// @Router /notifications/{id}/ack [post]
func (h *NotificationHandler) Ack(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	if err := h.uc.AckNotification(r.Context(), actor.Audience(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
