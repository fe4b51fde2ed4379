package domain

import "time"

// ApprovalState represents the onboarding state of an agent account.
type ApprovalState string

// List of possible approval states
const (
	ApprovalActive    ApprovalState = "active"
	ApprovalPending   ApprovalState = "pending"
	ApprovalSuspended ApprovalState = "suspended"
)

var allowedApprovalStates = [...]ApprovalState{
	ApprovalActive, ApprovalPending, ApprovalSuspended,
}

// Valid checks if the ApprovalState is valid
func (s ApprovalState) Valid() bool {
	for _, v := range allowedApprovalStates {
		if s == v {
			return true
		}
	}
	return false
}

// Agent represents a delivery agent as seen by the dispatch core.
type Agent struct {
	ID           int64
	Name         string
	Approval     ApprovalState
	Capacity     int
	ActiveOrders int
	Online       bool
	Location     *Location
}

// CanClaim reports whether the account state allows taking orders at all.
func (a Agent) CanClaim() bool {
	return a.Approval == ApprovalActive && a.Capacity > 0
}

// Location is a timestamped position report.
type Location struct {
	Point
	RecordedAt time.Time
}

// Availability is a read-only view of an agent's registry state.
type Availability struct {
	AgentID      int64
	Online       bool
	Capacity     int
	ActiveOrders int
}

// CanAcceptMore reports whether the agent is online and has a free slot.
func (a Availability) CanAcceptMore() bool {
	return a.Online && a.ActiveOrders < a.Capacity
}
