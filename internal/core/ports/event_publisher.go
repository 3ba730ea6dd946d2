package ports

import (
	"context"

	"fooddelivery/internal/core/domain/model/order"
)

// EventPublisher broadcasts committed domain events to registered
// subscribers. Publishers are explicitly constructed and injected at
// composition time; there is no ambient global bus.
//
// Delivery contract: Publish delivers synchronously, in process, to every
// subscriber currently registered for the event's kind, in registration
// order, before returning. A subscriber failure is logged by the publisher
// and does not prevent delivery to the remaining subscribers, and it never
// rolls back the order mutation that produced the event. Events are
// fire-and-forget relative to persistence: at-most-once, no retry, no replay.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event)
}

// EventSubscriber is implemented by collaborators that react to domain
// events, typically by maintaining their own derived records.
type EventSubscriber interface {
	// Name identifies the subscriber in logs.
	Name() string

	// OnOrderEvent handles one event. Implementations must be idempotent per
	// (orderID, eventKind) pair: re-delivery of the same event must not
	// create duplicate derived records.
	OnOrderEvent(ctx context.Context, event order.Event) error
}

// Reconciler is implemented by subscribers that can repair gaps caused by
// missed events. The core makes no guarantee about whether a subscriber
// receives an event under process crash, so reconcilers periodically compare
// their derived records against the order store's current state, which they
// may read but never write.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}
