package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	uc     dispatchUsecase
	logger logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, uc dispatchUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logx.OrNop(logger)}
}

func orderID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// Accept handles POST /orders/{id}/accept.
// @Summary Accept an available order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} orderDTO
// @Failure 403 {object} ErrorResponse "caller is not an agent"
// @Failure 409 {object} ErrorResponse "order no longer available"
// @Failure 422 {object} ErrorResponse "agent not eligible"
// @Router /orders/{id}/accept [post]
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	if actor.Kind != domain.AudienceAgent {
		writeError(h.logger, w, r, http.StatusForbidden, "only agents accept orders")
		return
	}

	res, err := h.uc.Accept(r.Context(), orderID(r), actor.ID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	switch res.Outcome {
	case domain.ClaimAssigned:
		writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(res.Order))
	case domain.ClaimAlreadyAssigned:
		writeError(h.logger, w, r, http.StatusConflict, "order no longer available")
	default:
		writeErrorReason(h.logger, w, r, http.StatusUnprocessableEntity, "not eligible", res.Reason)
	}
}

// Reject handles POST /orders/{id}/reject.
// @Summary Decline an offered order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} orderDTO
// @Failure 422 {object} ErrorResponse "order is not open for this agent"
// @Router /orders/{id}/reject [post]
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	if actor.Kind != domain.AudienceAgent {
		writeError(h.logger, w, r, http.StatusForbidden, "only agents reject orders")
		return
	}

	o, err := h.uc.Reject(r.Context(), orderID(r), actor.ID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// Ready handles POST /orders/{id}/ready. The body is optional: when present
// the order is registered first. A pharmacy may only ready its own orders.
// @Summary Mark an order ready for pickup
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body readyOrderRequest false "Order details for unknown orders"
// @Success 200 {object} orderDTO
// @Router /orders/{id}/ready [post]
func (h *OrderHandler) Ready(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	if actor.Kind != domain.AudiencePharmacy && actor.Kind != identity.KindService {
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
		return
	}
	id := orderID(r)

	var (
		o   domain.Order
		err error
	)
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		var req readyOrderRequest
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
		model := req.toModel(id)
		if actor.Kind == domain.AudiencePharmacy {
			model.PharmacyID = actor.ID
		}
		o, err = h.uc.RegisterOrder(r.Context(), model)
	} else {
		if actor.Kind == domain.AudiencePharmacy {
			if _, err := h.uc.WatchOrder(r.Context(), actor.Audience(), id); err != nil {
				writeServiceError(h.logger, w, r, err)
				return
			}
		}
		o, err = h.uc.OrderReady(r.Context(), id)
	}
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}

// UpdateStatus handles PUT /orders/{id}/status. Agents act on their own
// orders, pharmacies on orders they issued, services on any order.
// @Summary Move an order along its lifecycle
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body updateStatusRequest true "Target status"
// @Success 200 {object} orderDTO
// @Failure 409 {object} ErrorResponse "illegal transition"
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	id := orderID(r)

	var by *int64
	switch actor.Kind {
	case domain.AudienceAgent:
		agentID := actor.ID
		by = &agentID
	case domain.AudiencePharmacy:
		if _, err := h.uc.WatchOrder(r.Context(), actor.Audience(), id); err != nil {
			writeServiceError(h.logger, w, r, err)
			return
		}
	case identity.KindService:
	default:
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
		return
	}

	o, err := h.uc.UpdateOrderStatus(r.Context(), id, req.Status, by)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(o))
}
