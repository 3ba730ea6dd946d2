// Package delivery maintains courier assignments as a projection of order
// events. An assignment appears when the kitchen reports the order ready,
// completes on delivery and is voided on cancellation.
package delivery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Assignment statuses.
const (
	AssignmentActive    = "ASSIGNED"
	AssignmentCompleted = "COMPLETED"
	AssignmentVoid      = "VOID"
)

// AssignmentDTO is one courier assignment, keyed by order.
type AssignmentDTO struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	OrderID        uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	TrackingNumber string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for courier assignments.
func (AssignmentDTO) TableName() string {
	return "delivery_assignments"
}

// TrackingNumberFor derives the tracking number shown to customers from the
// order identifier. Deterministic so replays and reconciliation produce the
// same number.
func TrackingNumberFor(orderID kernel.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", ""))
	return "TRK-" + compact[:12]
}

// Notifier reacts to order events by keeping courier assignments current.
type Notifier struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewNotifier creates a delivery notifier over the given database.
func NewNotifier(db *gorm.DB, logger *slog.Logger) *Notifier {
	return &Notifier{
		db:     db,
		logger: logger.With("component", "delivery_notifier"),
	}
}

// Name identifies the notifier in logs.
func (n *Notifier) Name() string {
	return "delivery"
}

// OnOrderEvent creates the assignment when the order reaches Ready or
// OutForDelivery, completes it on delivery and voids it on cancellation. An
// order cancelled before it was ready never had an assignment, so
// cancellation only updates existing rows. Idempotent per (orderID,
// eventKind).
func (n *Notifier) OnOrderEvent(ctx context.Context, event order.Event) error {
	switch event.Kind {
	case order.EventOrderStatusChanged:
		if event.Status != order.Ready && event.Status != order.OutForDelivery {
			return nil
		}
		return n.createAssignment(ctx, event.OrderID)
	case order.EventOrderDelivered:
		return n.upsertStatus(ctx, event.OrderID, AssignmentCompleted)
	case order.EventOrderCancelled:
		return n.db.WithContext(ctx).Model(&AssignmentDTO{}).
			Where("order_id = ?", event.OrderID.Bytes()).
			Updates(map[string]any{
				"status":     AssignmentVoid,
				"updated_at": time.Now().UTC(),
			}).Error
	default:
		return nil
	}
}

// Reconcile walks the order store read-only and repairs assignments for
// orders that are at or past Ready.
func (n *Notifier) Reconcile(ctx context.Context) error {
	rows, err := n.db.WithContext(ctx).Raw(`
		SELECT id, status
		FROM orders
		WHERE status IN ?
	`, []int{
		int(order.Ready), int(order.OutForDelivery), int(order.Delivered), int(order.Cancelled),
	}).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rawID uuid.UUID
		var status int

		if err = rows.Scan(&rawID, &status); err != nil {
			return err
		}

		orderID, idErr := kernel.UUIDFromBytes(rawID[:])
		if idErr != nil {
			return idErr
		}

		switch order.Status(status) {
		case order.Ready, order.OutForDelivery:
			err = n.createAssignment(ctx, orderID)
		case order.Delivered:
			err = n.upsertStatus(ctx, orderID, AssignmentCompleted)
		case order.Cancelled:
			err = n.db.WithContext(ctx).Model(&AssignmentDTO{}).
				Where("order_id = ? AND status <> ?", orderID.Bytes(), AssignmentVoid).
				Updates(map[string]any{
					"status":     AssignmentVoid,
					"updated_at": time.Now().UTC(),
				}).Error
		}
		if err != nil {
			return err
		}
	}

	return rows.Err()
}

// createAssignment inserts the assignment if it does not exist yet. Existing
// rows keep their status so a late Ready event cannot reopen a completed
// assignment.
func (n *Notifier) createAssignment(ctx context.Context, orderID kernel.UUID) error {
	now := time.Now().UTC()
	assignment := AssignmentDTO{
		OrderID:        orderID.Bytes(),
		TrackingNumber: TrackingNumberFor(orderID),
		Status:         AssignmentActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return n.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(&assignment).Error
}

// upsertStatus inserts or advances the assignment to the given status.
// Handles the crash case where the Ready event was lost but the delivery
// still happened.
func (n *Notifier) upsertStatus(ctx context.Context, orderID kernel.UUID, status string) error {
	now := time.Now().UTC()
	assignment := AssignmentDTO{
		OrderID:        orderID.Bytes(),
		TrackingNumber: TrackingNumberFor(orderID),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return n.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     status,
			"updated_at": now,
		}),
	}).Create(&assignment).Error
}
