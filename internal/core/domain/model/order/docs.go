// Package order contains the Order aggregate and its lifecycle state machine.
//
// An order is created in Pending status and mutated only through validated
// transitions. The transition table is closed: forward movement follows
// Pending -> Confirmed -> Preparing -> Ready -> OutForDelivery -> Delivered,
// cancellation is reachable from any non-terminal state, and Delivered and
// Cancelled admit no further transitions.
//
// Two invariants hold for every order:
//   - the status history is append-only, and the current status always equals
//     the status of the most recent history entry;
//   - the total amount is always recomputed from the line items plus delivery
//     fee, tax and tip, never stored or mutated independently.
//
// Each committed transition produces exactly one domain Event, built with
// CreatedEvent or EventForTransition.
package order
