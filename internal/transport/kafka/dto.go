package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/domain"
)

// EventKind is the lifecycle step carried by an orders topic message.
type EventKind string

// Kinds the dispatch core reacts to.
const (
	EventReady     EventKind = "ready"
	EventCancelled EventKind = "cancelled"
	EventDelivered EventKind = "delivered"
)

// PointDTO is a wire coordinate.
type PointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventDTO is the JSON shape of an orders topic message.
type EventDTO struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	CustomerID int64     `json:"customer_id,omitempty"`
	PharmacyID int64     `json:"pharmacy_id,omitempty"`
	Pickup     *PointDTO `json:"pickup,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Event is a validated orders topic message.
type Event struct {
	Kind  EventKind
	Order domain.Order
}

// ToDomain validates dto. The returned errors are permanent: the message will
// never become valid on redelivery.
func ToDomain(dto EventDTO) (Event, error) {
	id := strings.TrimSpace(dto.OrderID)
	if id == "" {
		return Event{}, Permanent(fmt.Errorf("empty order_id"))
	}
	kind := EventKind(strings.ToLower(strings.TrimSpace(dto.Status)))
	ev := Event{Kind: kind, Order: domain.Order{ID: id, CreatedAt: dto.CreatedAt.UTC()}}

	switch kind {
	case EventReady:
		if dto.Pickup == nil {
			return Event{}, Permanent(fmt.Errorf("order %s: ready event without pickup", id))
		}
		ev.Order.Status = domain.OrderPending
		ev.Order.CustomerID = dto.CustomerID
		ev.Order.PharmacyID = dto.PharmacyID
		ev.Order.Pickup = domain.Point{Lat: dto.Pickup.Lat, Lng: dto.Pickup.Lng}
		if !ev.Order.Pickup.Valid() {
			return Event{}, Permanent(fmt.Errorf("order %s: pickup out of range", id))
		}
	case EventCancelled:
		ev.Order.Status = domain.OrderCancelled
	case EventDelivered:
		ev.Order.Status = domain.OrderDelivered
	default:
		return Event{}, Permanent(fmt.Errorf("order %s: unsupported status %q", id, dto.Status))
	}
	return ev, nil
}

// NotificationDTO is the JSON shape mirrored to the dispatch events topic.
type NotificationDTO struct {
	ID        uuid.UUID       `json:"id"`
	Seq       int64           `json:"seq"`
	Target    string          `json:"target"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromNotification converts ev to its wire form.
func FromNotification(ev domain.NotificationEvent) NotificationDTO {
	return NotificationDTO{
		ID:        ev.ID,
		Seq:       ev.Seq,
		Target:    ev.Target.String(),
		Type:      string(ev.Type),
		Payload:   ev.Payload,
		CreatedAt: ev.CreatedAt,
	}
}
