package domain

import "time"

// ClaimOutcome is the result of an agent's attempt to take an order.
type ClaimOutcome string

// List of possible claim outcomes
const (
	ClaimAssigned        ClaimOutcome = "assigned"
	ClaimAlreadyAssigned ClaimOutcome = "already_assigned"
	ClaimNotEligible     ClaimOutcome = "not_eligible"
)

// ClaimAttempt is one agent's accept request for one order.
type ClaimAttempt struct {
	OrderID     string
	AgentID     int64
	AttemptedAt time.Time
}

// ClaimResult describes how a claim attempt resolved.
// Order is populated only for ClaimAssigned.
type ClaimResult struct {
	Outcome ClaimOutcome
	Reason  string
	Order   Order
}

// Won reports whether the attempt got the order.
func (r ClaimResult) Won() bool { return r.Outcome == ClaimAssigned }

// Candidate is an agent within radius of a point.
type Candidate struct {
	AgentID        int64
	DistanceMeters float64
}
