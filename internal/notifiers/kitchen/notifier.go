// Package kitchen maintains the kitchen's ticket queue as a projection of
// order events. Tickets are derived records: the order store stays the single
// source of truth and the reconciler rebuilds anything a missed event should
// have produced.
package kitchen

import (
	"context"
	"log/slog"
	"time"

	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ticket statuses.
const (
	TicketQueued    = "QUEUED"
	TicketConfirmed = "CONFIRMED"
	TicketCancelled = "CANCELLED"
)

// TicketDTO is one kitchen ticket, keyed by order so event re-delivery can
// never produce duplicates.
type TicketDTO struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	OrderID      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	RestaurantID string    `gorm:"index"`
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the database table name for kitchen tickets.
func (TicketDTO) TableName() string {
	return "kitchen_tickets"
}

// Notifier reacts to order events by keeping kitchen tickets current.
type Notifier struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewNotifier creates a kitchen notifier over the given database.
func NewNotifier(db *gorm.DB, logger *slog.Logger) *Notifier {
	return &Notifier{
		db:     db,
		logger: logger.With("component", "kitchen_notifier"),
	}
}

// Name identifies the notifier in logs.
func (n *Notifier) Name() string {
	return "kitchen"
}

// OnOrderEvent queues a ticket on creation, confirms it when the restaurant
// accepts and cancels it when the order is cancelled. Other events are
// ignored. Idempotent per (orderID, eventKind).
func (n *Notifier) OnOrderEvent(ctx context.Context, event order.Event) error {
	switch event.Kind {
	case order.EventOrderCreated:
		return n.upsertTicket(ctx, event.OrderID.Bytes(), event.RestaurantID, TicketQueued, false)
	case order.EventOrderConfirmed:
		return n.upsertTicket(ctx, event.OrderID.Bytes(), event.RestaurantID, TicketConfirmed, true)
	case order.EventOrderCancelled:
		return n.upsertTicket(ctx, event.OrderID.Bytes(), event.RestaurantID, TicketCancelled, true)
	default:
		return nil
	}
}

// Reconcile walks the order store read-only and upserts the ticket every
// order should have by now. Repairs tickets lost to missed events.
func (n *Notifier) Reconcile(ctx context.Context) error {
	rows, err := n.db.WithContext(ctx).Raw(`
		SELECT id, restaurant_id, status
		FROM orders
	`).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	repaired := 0
	for rows.Next() {
		var orderID uuid.UUID
		var restaurantID string
		var status int

		if err = rows.Scan(&orderID, &restaurantID, &status); err != nil {
			return err
		}

		if err = n.upsertTicket(ctx, orderID, restaurantID, ticketStatusFor(order.Status(status)), true); err != nil {
			return err
		}
		repaired++
	}
	if err = rows.Err(); err != nil {
		return err
	}

	n.logger.DebugContext(ctx, "Kitchen tickets reconciled", "orders", repaired)
	return nil
}

// ticketStatusFor maps an order status to the ticket status it implies.
func ticketStatusFor(status order.Status) string {
	switch status {
	case order.Cancelled:
		return TicketCancelled
	case order.Pending:
		return TicketQueued
	default:
		return TicketConfirmed
	}
}

// upsertTicket inserts the ticket or, when overwrite is set, advances the
// status of the existing one. Creation events never overwrite so a replayed
// ORDER_CREATED cannot reopen a confirmed or cancelled ticket.
func (n *Notifier) upsertTicket(ctx context.Context, orderID uuid.UUID, restaurantID, status string, overwrite bool) error {
	now := time.Now().UTC()
	ticket := TicketDTO{
		OrderID:      orderID,
		RestaurantID: restaurantID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}
	if overwrite {
		onConflict.DoNothing = false
		onConflict.DoUpdates = clause.Assignments(map[string]any{
			"status":     status,
			"updated_at": now,
		})
	}

	return n.db.WithContext(ctx).Clauses(onConflict).Create(&ticket).Error
}
