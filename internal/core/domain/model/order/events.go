package order

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
)

// EventKind identifies the type of a domain event on the event boundary.
type EventKind string

const (
	EventOrderCreated       EventKind = "ORDER_CREATED"
	EventOrderConfirmed     EventKind = "ORDER_CONFIRMED"
	EventOrderCancelled     EventKind = "ORDER_CANCELLED"
	EventOrderDelivered     EventKind = "ORDER_DELIVERED"
	EventOrderStatusChanged EventKind = "ORDER_STATUS_CHANGED"
)

// AllEventKinds lists every event kind emitted by the lifecycle engine, in a
// stable order. Used by subscribers that react to the whole lifecycle.
func AllEventKinds() []EventKind {
	return []EventKind{
		EventOrderCreated,
		EventOrderConfirmed,
		EventOrderCancelled,
		EventOrderDelivered,
		EventOrderStatusChanged,
	}
}

// Event is an immutable fact describing a committed order mutation, broadcast
// to interested collaborators. Events are ephemeral: they are not persisted
// by the core and carry a payload snapshot so consumers do not need to read
// the order back.
type Event struct {
	Kind         EventKind
	OrderID      kernel.UUID
	CustomerID   string
	RestaurantID string
	Status       Status
	TotalAmount  float64
	Note         string
	OccurredAt   time.Time
}

// kindForStatus maps a newly reached status to its event kind. Statuses
// without a dedicated kind fall back to the generic status-changed event.
func kindForStatus(s Status) EventKind {
	switch s {
	case Confirmed:
		return EventOrderConfirmed
	case Cancelled:
		return EventOrderCancelled
	case Delivered:
		return EventOrderDelivered
	default:
		return EventOrderStatusChanged
	}
}

// CreatedEvent builds the ORDER_CREATED event for a freshly submitted order.
func CreatedEvent(o *Order, at time.Time) Event {
	return snapshotEvent(o, EventOrderCreated, "Order created", at)
}

// EventForTransition builds the event for a committed status transition:
// ORDER_CONFIRMED, ORDER_CANCELLED or ORDER_DELIVERED for the dedicated
// statuses, ORDER_STATUS_CHANGED for everything else.
func EventForTransition(o *Order, note string, at time.Time) Event {
	return snapshotEvent(o, kindForStatus(o.Status()), note, at)
}

func snapshotEvent(o *Order, kind EventKind, note string, at time.Time) Event {
	return Event{
		Kind:         kind,
		OrderID:      o.ID(),
		CustomerID:   o.CustomerID(),
		RestaurantID: o.RestaurantID(),
		Status:       o.Status(),
		TotalAmount:  o.TotalAmount(),
		Note:         note,
		OccurredAt:   at,
	}
}
