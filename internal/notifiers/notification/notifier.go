// Package notification records customer-facing messages for order events and
// optionally sends them out as email. The message row is the durable record;
// email delivery is best effort and never fails the event handler.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailSender delivers one message to a customer. Implementations resolve
// the customer identifier to an address themselves.
type EmailSender interface {
	Send(ctx context.Context, customerID, subject, body string) error
}

// MessageDTO is one recorded customer message, keyed by (order, event kind).
type MessageDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_notification_order_kind"`
	EventKind  string    `gorm:"uniqueIndex:idx_notification_order_kind"`
	CustomerID string    `gorm:"index"`
	Subject    string
	Body       string
	EmailSent  bool
	CreatedAt  time.Time
}

// TableName specifies the database table name for customer messages.
func (MessageDTO) TableName() string {
	return "notification_messages"
}

// Notifier records a message per order event and pushes it by email when a
// sender is configured. A nil sender disables email entirely.
type Notifier struct {
	db     *gorm.DB
	sender EmailSender
	logger *slog.Logger
}

// NewNotifier creates a notification notifier. sender may be nil.
func NewNotifier(db *gorm.DB, sender EmailSender, logger *slog.Logger) *Notifier {
	return &Notifier{
		db:     db,
		sender: sender,
		logger: logger.With("component", "notification_notifier"),
	}
}

// Name identifies the notifier in logs.
func (n *Notifier) Name() string {
	return "notification"
}

// OnOrderEvent records the message for the event. The email goes out only
// when this delivery actually inserted the row, so a replayed event does not
// spam the customer. Email failures are logged, the row stays with
// EmailSent=false and the handler still succeeds.
func (n *Notifier) OnOrderEvent(ctx context.Context, event order.Event) error {
	subject, body := MessageFor(event)

	message := MessageDTO{
		OrderID:    event.OrderID.Bytes(),
		EventKind:  string(event.Kind),
		CustomerID: event.CustomerID,
		Subject:    subject,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	result := n.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "event_kind"}},
		DoNothing: true,
	}).Create(&message)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 || n.sender == nil {
		return nil
	}

	if err := n.sender.Send(ctx, event.CustomerID, subject, body); err != nil {
		n.logger.WarnContext(ctx, "Email delivery failed",
			"orderId", event.OrderID.String(),
			"event", string(event.Kind),
			"error", err,
		)
		return nil
	}

	return n.db.WithContext(ctx).Model(&MessageDTO{}).
		Where("order_id = ? AND event_kind = ?", event.OrderID.Bytes(), string(event.Kind)).
		Update("email_sent", true).Error
}

// Reconcile walks the order store read-only and records the messages each
// order should have produced by now, given its current status. Repaired rows
// are record-only; no email is sent for them.
func (n *Notifier) Reconcile(ctx context.Context) error {
	rows, err := n.db.WithContext(ctx).Raw(`
		SELECT id, customer_id, status
		FROM orders
	`).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	now := time.Now().UTC()
	for rows.Next() {
		var orderID uuid.UUID
		var customerID string
		var status int

		if err = rows.Scan(&orderID, &customerID, &status); err != nil {
			return err
		}

		for _, kind := range kindsImpliedBy(order.Status(status)) {
			subject, body := messageForKind(kind, order.Status(status))
			message := MessageDTO{
				OrderID:    orderID,
				EventKind:  string(kind),
				CustomerID: customerID,
				Subject:    subject,
				Body:       body,
				CreatedAt:  now,
			}

			err = n.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_id"}, {Name: "event_kind"}},
				DoNothing: true,
			}).Create(&message).Error
			if err != nil {
				return err
			}
		}
	}

	return rows.Err()
}

// kindsImpliedBy lists the event kinds an order must have emitted to be in
// the given status. Cancellation can happen at any point, so for cancelled
// orders only the creation and cancellation messages are certain.
func kindsImpliedBy(status order.Status) []order.EventKind {
	switch status {
	case order.Pending:
		return []order.EventKind{order.EventOrderCreated}
	case order.Confirmed:
		return []order.EventKind{order.EventOrderCreated, order.EventOrderConfirmed}
	case order.Preparing, order.Ready, order.OutForDelivery:
		return []order.EventKind{
			order.EventOrderCreated, order.EventOrderConfirmed, order.EventOrderStatusChanged,
		}
	case order.Delivered:
		return []order.EventKind{
			order.EventOrderCreated, order.EventOrderConfirmed,
			order.EventOrderStatusChanged, order.EventOrderDelivered,
		}
	case order.Cancelled:
		return []order.EventKind{order.EventOrderCreated, order.EventOrderCancelled}
	default:
		return nil
	}
}

// MessageFor composes the customer-facing subject and body for an event.
func MessageFor(event order.Event) (subject, body string) {
	return messageForKind(event.Kind, event.Status)
}

func messageForKind(kind order.EventKind, status order.Status) (subject, body string) {
	switch kind {
	case order.EventOrderCreated:
		return "Order received",
			"We received your order and sent it to the restaurant."
	case order.EventOrderConfirmed:
		return "Order confirmed",
			"The restaurant confirmed your order and will start preparing it shortly."
	case order.EventOrderDelivered:
		return "Order delivered",
			"Your order was delivered. Enjoy your meal!"
	case order.EventOrderCancelled:
		return "Order cancelled",
			"Your order was cancelled. If you were charged, a refund is on the way."
	default:
		return "Order update",
			fmt.Sprintf("Your order is now %s.", status)
	}
}
