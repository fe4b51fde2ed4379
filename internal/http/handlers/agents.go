package handlers

import (
	"net/http"

	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

// AgentHandler serves agent presence endpoints.
type AgentHandler struct {
	uc     dispatchUsecase
	logger logx.Logger
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(logger logx.Logger, uc dispatchUsecase) *AgentHandler {
	return &AgentHandler{uc: uc, logger: logx.OrNop(logger)}
}

// agentFromURL parses {id} and checks the caller may act for that agent.
func (h *AgentHandler) agentFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	actor, ok := actorFrom(h.logger, w, r)
	if !ok {
		return 0, false
	}
	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	if !actor.IsAgent(id) && actor.Kind != identity.KindService {
		writeError(h.logger, w, r, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return id, true
}

// SetOnline handles PUT /agents/{id}/online-status.
// @Summary Toggle agent availability
// @Tags agents
// @Accept json
// @Produce json
// @Param id path int true "Agent ID"
// @Param request body setOnlineRequest true "Online flag"
// @Success 200 {object} availabilityDTO
// @Failure 422 {object} ErrorResponse "agent account is not active"
// @Router /agents/{id}/online-status [put]
func (h *AgentHandler) SetOnline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.agentFromURL(w, r)
	if !ok {
		return
	}
	var req setOnlineRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.Online == nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "online is required")
		return
	}

	a, err := h.uc.SetOnline(r.Context(), id, *req.Online)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, availabilityToResponse(a))
}

// UpdateLocation handles PUT /agents/{id}/location. An out-of-order report
// is accepted with 202 and {"applied":false}.
// @Summary Report agent position
// @Tags agents
// @Accept json
// @Produce json
// @Param id path int true "Agent ID"
// @Param request body updateLocationRequest true "Position"
// @Success 200 {object} locationResponse
// @Success 202 {object} locationResponse "stale update ignored"
// @Router /agents/{id}/location [put]
func (h *AgentHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.agentFromURL(w, r)
	if !ok {
		return
	}
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	applied, err := h.uc.UpdateLocation(r.Context(), id, pointOf(*req.Lat, *req.Lng), req.Timestamp)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	status := http.StatusOK
	if !applied {
		status = http.StatusAccepted
	}
	writeJSON(h.logger, w, r, status, locationResponse{Applied: applied})
}

// AvailableOrders handles GET /agents/{id}/available-orders.
// @Summary List orders the agent may accept
// @Tags agents
// @Produce json
// @Param id path int true "Agent ID"
// @Success 200 {array} orderDTO
// @Router /agents/{id}/available-orders [get]
func (h *AgentHandler) AvailableOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := h.agentFromURL(w, r)
	if !ok {
		return
	}
	list, err := h.uc.AvailableOrders(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}
