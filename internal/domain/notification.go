package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AudienceKind identifies who a notification is addressed to.
type AudienceKind string

// List of possible audience kinds
const (
	AudienceAgent    AudienceKind = "agent"
	AudienceCustomer AudienceKind = "customer"
	AudiencePharmacy AudienceKind = "pharmacy"
	AudienceOrder    AudienceKind = "order"
)

// Audience is a notification target ("room"). Order rooms are keyed by the
// order id, every other kind by a numeric account id.
type Audience struct {
	Kind AudienceKind
	Key  string
}

// AgentAudience returns the per-agent room.
func AgentAudience(id int64) Audience {
	return Audience{Kind: AudienceAgent, Key: strconv.FormatInt(id, 10)}
}

// CustomerAudience returns the per-customer room.
func CustomerAudience(id int64) Audience {
	return Audience{Kind: AudienceCustomer, Key: strconv.FormatInt(id, 10)}
}

// PharmacyAudience returns the per-pharmacy room.
func PharmacyAudience(id int64) Audience {
	return Audience{Kind: AudiencePharmacy, Key: strconv.FormatInt(id, 10)}
}

// OrderAudience returns the per-order room.
func OrderAudience(orderID string) Audience {
	return Audience{Kind: AudienceOrder, Key: orderID}
}

// String renders the audience as "<kind>:<key>".
func (a Audience) String() string {
	return string(a.Kind) + ":" + a.Key
}

// ParseAudience parses the "<kind>:<key>" form.
func ParseAudience(s string) (Audience, error) {
	kind, key, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || key == "" {
		return Audience{}, fmt.Errorf("audience %q: missing key", s)
	}
	a := Audience{Kind: AudienceKind(kind), Key: key}
	switch a.Kind {
	case AudienceOrder:
		return a, nil
	case AudienceAgent, AudienceCustomer, AudiencePharmacy:
		if id, err := strconv.ParseInt(key, 10, 64); err != nil || id <= 0 {
			return Audience{}, fmt.Errorf("audience %q: invalid id", s)
		}
		return a, nil
	default:
		return Audience{}, fmt.Errorf("audience %q: unknown kind", s)
	}
}

// EventType names a real-time channel event.
type EventType string

// List of server -> client event types
const (
	EventNewAvailableOrder   EventType = "new-available-order"
	EventOrderAssigned       EventType = "order-assigned"
	EventOrderStatusChanged  EventType = "order-status-changed"
	EventOnlineStatusChanged EventType = "online-status-changed"
)

// NotificationEvent is a persisted, at-least-once delivered notification.
// Seq is assigned by the event store and orders events of one target.
type NotificationEvent struct {
	ID        uuid.UUID
	Seq       int64
	Target    Audience
	Type      EventType
	Payload   json.RawMessage
	Delivered bool
	CreatedAt time.Time
}

// NewNotificationEvent builds an undelivered event with a fresh id.
func NewNotificationEvent(target Audience, typ EventType, payload any, now time.Time) (NotificationEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return NotificationEvent{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return NotificationEvent{
		ID:        uuid.New(),
		Target:    target,
		Type:      typ,
		Payload:   raw,
		CreatedAt: now,
	}, nil
}

// OrderPayload is the payload of order related events.
type OrderPayload struct {
	OrderID         string      `json:"order_id"`
	Status          OrderStatus `json:"status"`
	AssignedAgentID *int64      `json:"assigned_agent_id,omitempty"`
	PickupLat       float64     `json:"pickup_lat"`
	PickupLng       float64     `json:"pickup_lng"`
	DistanceMeters  *float64    `json:"distance_meters,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// NewOrderPayload projects an order into an event payload.
func NewOrderPayload(o Order) OrderPayload {
	return OrderPayload{
		OrderID:         o.ID,
		Status:          o.Status,
		AssignedAgentID: o.AssignedAgentID,
		PickupLat:       o.Pickup.Lat,
		PickupLng:       o.Pickup.Lng,
		CreatedAt:       o.CreatedAt,
	}
}

// OnlinePayload is the payload of online-status-changed.
type OnlinePayload struct {
	AgentID int64 `json:"agent_id"`
	Online  bool  `json:"online"`
}
