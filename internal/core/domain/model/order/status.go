package order

import (
	"fmt"

	"fooddelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of an order. It implements a state
// machine with a closed transition table to ensure orders follow the correct
// business workflow.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> Ready ──> OutForDelivery ──> Delivered
//	   │            │             │           │              │
//	   └────────────┴─────────────┴───────────┴──────────────┴──> Cancelled
//
// Delivered and Cancelled are terminal: no transition leaves them.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first submitted.
	Pending

	// Confirmed indicates the restaurant has accepted the order.
	Confirmed

	// Preparing indicates the kitchen is working on the order.
	Preparing

	// Ready indicates the order is packed and waiting for pickup.
	Ready

	// OutForDelivery indicates a driver is carrying the order to the customer.
	OutForDelivery

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled before delivery. Terminal.
	Cancelled
)

// getStatusStrings returns a map of Status values to their wire names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		Pending:        "PENDING",
		Confirmed:      "CONFIRMED",
		Preparing:      "PREPARING",
		Ready:          "READY",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
		Cancelled:      "CANCELLED",
	}
}

// getTransitionTable returns, for every valid status, the set of statuses
// reachable from it. Any pair not listed here is rejected.
func getTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Preparing, Cancelled},
		Preparing:      {Ready, Cancelled},
		Ready:          {OutForDelivery, Cancelled},
		OutForDelivery: {Delivered, Cancelled},
		Delivered:      {},
		Cancelled:      {},
	}
}

// StatusFromString parses a wire name ("PENDING", "OUT_FOR_DELIVERY", ...)
// into a Status. Returns an error for unknown names.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getTransitionTable()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status. Implements fmt.Stringer and is
// safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether target is reachable from s in one step per
// the transition table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range getTransitionTable()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo validates and performs a single state machine step.
//
// Returns (target, nil) when target is reachable from s, or
// (Unknown, *errs.InvalidStatusTransitionError) otherwise. Both s and target
// must be valid statuses.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := s.Validate(); err != nil {
		return Unknown, err
	}
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewInvalidStatusTransitionError(s.String(), target.String())
	}
	return target, nil
}
