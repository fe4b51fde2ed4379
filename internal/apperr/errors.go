package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the caller identity may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrStaleUpdate is returned for a location update older than the last applied one.
var ErrStaleUpdate = errors.New("stale location update")

// ErrNotEligible is returned when an agent may not act on an order.
var ErrNotEligible = errors.New("not eligible")

// ErrAlreadyAssigned signals that another agent won the order.
var ErrAlreadyAssigned = errors.New("order already assigned")

// ErrCapacityExceeded signals that an agent has no free delivery slot left.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrDependencyUnavailable wraps failures of the order/agent/event stores.
// Operations failing with it are safe to retry.
var ErrDependencyUnavailable = errors.New("dependency unavailable")
