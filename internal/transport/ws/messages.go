package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/domain"
)

// Client message types.
const (
	MsgLocationUpdate = "location-update"
	MsgAck            = "ack"
	MsgJoinOrder      = "join-order"
)

// Server-only message types. Pushed events use their event type.
const (
	MsgLocationResult = "location-result"
	MsgJoined         = "joined"
	MsgError          = "error"
)

type inbound struct {
	Type      string    `json:"type"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
}

type outbound struct {
	Type      string          `json:"type"`
	ID        *uuid.UUID      `json:"id,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Target    string          `json:"target,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	Applied   *bool           `json:"applied,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	Request   string          `json:"request,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func eventMessage(ev domain.NotificationEvent) outbound {
	id, created := ev.ID, ev.CreatedAt
	return outbound{
		Type:      string(ev.Type),
		ID:        &id,
		Seq:       ev.Seq,
		Target:    ev.Target.String(),
		Payload:   ev.Payload,
		CreatedAt: &created,
	}
}

func errorMessage(request string, err string) outbound {
	return outbound{Type: MsgError, Request: request, Error: err}
}
