// Package amqp relays order events to a RabbitMQ topic exchange so external
// consumers can follow the order lifecycle. The relay is an optional
// subscriber: when no broker is configured the system runs without it, and a
// publish failure is handled like any other subscriber failure, logged by
// the event bus and dropped.
package amqp

import (
	"context"
	"encoding/json"
	"time"

	"fooddelivery/internal/core/domain/model/order"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange order events are published to.
	ExchangeName = "order_events"

	publishTimeout = 5 * time.Second
)

// eventMessage is the wire format of a relayed event.
type eventMessage struct {
	Kind         string    `json:"kind"`
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	RestaurantID string    `json:"restaurant_id"`
	Status       string    `json:"status"`
	TotalAmount  float64   `json:"total_amount"`
	Note         string    `json:"note,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Forwarder implements ports.EventSubscriber by publishing every event as a
// persistent JSON message. The routing key is the lowercased event kind, e.g.
// "order.created" for ORDER_CREATED.
type Forwarder struct {
	channel *amqp091.Channel
}

// NewForwarder declares the exchange and returns the relay.
func NewForwarder(channel *amqp091.Channel) (*Forwarder, error) {
	err := channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &Forwarder{channel: channel}, nil
}

// Name identifies the relay in logs.
func (f *Forwarder) Name() string {
	return "amqp_relay"
}

// OnOrderEvent publishes the event to the exchange.
func (f *Forwarder) OnOrderEvent(ctx context.Context, event order.Event) error {
	body, err := json.Marshal(eventMessage{
		Kind:         string(event.Kind),
		OrderID:      event.OrderID.String(),
		CustomerID:   event.CustomerID,
		RestaurantID: event.RestaurantID,
		Status:       event.Status.String(),
		TotalAmount:  event.TotalAmount,
		Note:         event.Note,
		OccurredAt:   event.OccurredAt,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return f.channel.PublishWithContext(ctx,
		ExchangeName,
		RoutingKeyFor(event.Kind),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    event.OccurredAt,
		})
}

// RoutingKeyFor maps an event kind to its routing key: ORDER_CREATED becomes
// "order.created", ORDER_STATUS_CHANGED becomes "order.status_changed".
func RoutingKeyFor(kind order.EventKind) string {
	switch kind {
	case order.EventOrderCreated:
		return "order.created"
	case order.EventOrderConfirmed:
		return "order.confirmed"
	case order.EventOrderCancelled:
		return "order.cancelled"
	case order.EventOrderDelivered:
		return "order.delivered"
	default:
		return "order.status_changed"
	}
}
