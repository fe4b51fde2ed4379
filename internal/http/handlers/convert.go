package handlers

import "courier-dispatch/internal/domain"

func orderToResponse(o domain.Order) orderDTO {
	return orderDTO{
		ID:              o.ID,
		Status:          o.Status,
		AssignedAgentID: o.AssignedAgentID,
		CustomerID:      o.CustomerID,
		PharmacyID:      o.PharmacyID,
		Pickup:          pointDTO{Lat: o.Pickup.Lat, Lng: o.Pickup.Lng},
		CreatedAt:       o.CreatedAt,
	}
}

func ordersToResponse(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func (r readyOrderRequest) toModel(id string) domain.Order {
	o := domain.Order{
		ID:         id,
		Status:     domain.OrderPending,
		CustomerID: r.CustomerID,
		PharmacyID: r.PharmacyID,
	}
	if r.Pickup != nil {
		o.Pickup = domain.Point{Lat: r.Pickup.Lat, Lng: r.Pickup.Lng}
	}
	return o
}

func availabilityToResponse(a domain.Availability) availabilityDTO {
	return availabilityDTO{
		AgentID:      a.AgentID,
		Online:       a.Online,
		Capacity:     a.Capacity,
		ActiveOrders: a.ActiveOrders,
	}
}

func notificationsToResponse(list []domain.NotificationEvent) []notificationDTO {
	out := make([]notificationDTO, 0, len(list))
	for _, ev := range list {
		out = append(out, notificationDTO{
			ID:        ev.ID,
			Seq:       ev.Seq,
			Target:    ev.Target.String(),
			Type:      ev.Type,
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out
}

func pointOf(lat, lng float64) domain.Point {
	return domain.Point{Lat: lat, Lng: lng}
}
