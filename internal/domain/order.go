package domain

import "time"

// OrderStatus represents the dispatch status of an order.
type OrderStatus string

// List of possible order statuses
const (
	OrderPending    OrderStatus = "pending"
	OrderAvailable  OrderStatus = "available"
	OrderAssigned   OrderStatus = "assigned"
	OrderInProgress OrderStatus = "in_progress"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderAvailable, OrderAssigned, OrderInProgress, OrderDelivered, OrderCancelled,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// HasAssignee reports whether an order in this status must carry an assigned agent.
func (s OrderStatus) HasAssignee() bool {
	return s == OrderAssigned || s == OrderInProgress
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order represents an order that is ready (or being made ready) for pickup.
type Order struct {
	ID              string
	Status          OrderStatus
	AssignedAgentID *int64
	CustomerID      int64
	PharmacyID      int64
	Pickup          Point
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Valid checks the assignee invariant: an agent is set iff the order is
// assigned or in progress.
func (o Order) Valid() bool {
	if !o.Status.Valid() {
		return false
	}
	return (o.AssignedAgentID != nil) == o.Status.HasAssignee()
}

// AssignedTo reports whether the order is held by agentID.
func (o Order) AssignedTo(agentID int64) bool {
	return o.AssignedAgentID != nil && *o.AssignedAgentID == agentID
}

// StatusTransition is a conditional status change request for the order store.
// Agent is written only when Next carries an assignee; otherwise the stored
// agent is cleared.
type StatusTransition struct {
	OrderID  string
	Expected OrderStatus
	Next     OrderStatus
	Agent    *int64
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderAvailable, OrderCancelled},
	OrderAvailable:  {OrderPending, OrderAssigned, OrderCancelled},
	OrderAssigned:   {OrderInProgress, OrderDelivered, OrderCancelled},
	OrderInProgress: {OrderDelivered, OrderCancelled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
