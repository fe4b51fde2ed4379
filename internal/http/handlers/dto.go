package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/domain"
)

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type orderDTO struct {
	ID              string             `json:"id"`
	Status          domain.OrderStatus `json:"status"`
	AssignedAgentID *int64             `json:"assigned_agent_id,omitempty"`
	CustomerID      int64              `json:"customer_id,omitempty"`
	PharmacyID      int64              `json:"pharmacy_id,omitempty"`
	Pickup          pointDTO           `json:"pickup"`
	CreatedAt       time.Time          `json:"created_at"`
}

type readyOrderRequest struct {
	CustomerID int64     `json:"customer_id"`
	PharmacyID int64     `json:"pharmacy_id"`
	Pickup     *pointDTO `json:"pickup"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type setOnlineRequest struct {
	Online *bool `json:"online"`
}

type availabilityDTO struct {
	AgentID      int64 `json:"agent_id"`
	Online       bool  `json:"online"`
	Capacity     int   `json:"capacity"`
	ActiveOrders int   `json:"active_orders"`
}

type updateLocationRequest struct {
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type locationResponse struct {
	Applied bool `json:"applied"`
}

type notificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	Seq       int64            `json:"seq"`
	Target    string           `json:"target"`
	Type      domain.EventType `json:"type"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}
