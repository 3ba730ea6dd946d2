// Package eventbus provides the in-process domain event publisher.
// Delivery is synchronous and fire-and-forget: subscribers for an event kind
// run in registration order, their failures are logged and swallowed, and
// nothing is persisted or retried. Cross-service consistency is repaired by
// the reconciliation job, not by the bus.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// Publisher implements ports.EventPublisher with per-kind subscriber lists.
// Subscribe is meant to be called from the composition root before the first
// Publish; the publisher is not safe for concurrent subscription.
type Publisher struct {
	subscribers map[order.EventKind][]ports.EventSubscriber
	logger      *slog.Logger
}

// NewPublisher creates an empty publisher.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		subscribers: make(map[order.EventKind][]ports.EventSubscriber),
		logger:      logger.With("component", "event_publisher"),
	}
}

// Subscribe registers a subscriber for one event kind. A subscriber may be
// registered for several kinds; per kind, delivery follows registration
// order.
func (p *Publisher) Subscribe(kind order.EventKind, subscriber ports.EventSubscriber) {
	p.subscribers[kind] = append(p.subscribers[kind], subscriber)
}

// SubscribeAll registers a subscriber for every event kind.
func (p *Publisher) SubscribeAll(subscriber ports.EventSubscriber) {
	for _, kind := range order.AllEventKinds() {
		p.Subscribe(kind, subscriber)
	}
}

// Publish delivers the event synchronously to every subscriber registered
// for its kind. Subscriber errors and panics are logged and do not stop
// delivery to the remaining subscribers; they never surface to the caller.
func (p *Publisher) Publish(ctx context.Context, event order.Event) {
	for _, subscriber := range p.subscribers[event.Kind] {
		p.deliver(ctx, subscriber, event)
	}
}

func (p *Publisher) deliver(ctx context.Context, subscriber ports.EventSubscriber, event order.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "Event subscriber panicked",
				"subscriber", subscriber.Name(),
				"event", string(event.Kind),
				"orderId", event.OrderID.String(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	if err := subscriber.OnOrderEvent(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "Event subscriber failed",
			"subscriber", subscriber.Name(),
			"event", string(event.Kind),
			"orderId", event.OrderID.String(),
			"error", err,
		)
	}
}
