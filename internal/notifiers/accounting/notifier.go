// Package accounting books financial entries derived from order events: a
// payment with platform commission when an order is delivered, a refund when
// it is cancelled. Entries are append-only and keyed by (order, kind) so a
// replayed event can never double-book.
package accounting

import (
	"context"
	"log/slog"
	"math"
	"time"

	"fooddelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry kinds.
const (
	EntryPayment = "PAYMENT"
	EntryRefund  = "REFUND"
)

// DefaultCommissionRate is the platform's cut of a delivered order.
const DefaultCommissionRate = 0.05

// EntryDTO is one ledger entry.
type EntryDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_accounting_order_kind"`
	Kind       string    `gorm:"uniqueIndex:idx_accounting_order_kind"`
	Amount     float64
	Commission float64
	CreatedAt  time.Time
}

// TableName specifies the database table name for ledger entries.
func (EntryDTO) TableName() string {
	return "accounting_entries"
}

// Notifier reacts to order events by booking ledger entries.
type Notifier struct {
	db     *gorm.DB
	rate   float64
	logger *slog.Logger
}

// NewNotifier creates an accounting notifier with the given commission rate.
// A non-positive rate falls back to DefaultCommissionRate.
func NewNotifier(db *gorm.DB, rate float64, logger *slog.Logger) *Notifier {
	if rate <= 0 {
		rate = DefaultCommissionRate
	}
	return &Notifier{
		db:     db,
		rate:   rate,
		logger: logger.With("component", "accounting_notifier"),
	}
}

// Name identifies the notifier in logs.
func (n *Notifier) Name() string {
	return "accounting"
}

// Commission returns the platform commission for the given order total,
// rounded to cents.
func (n *Notifier) Commission(total float64) float64 {
	return math.Round(total*n.rate*100) / 100
}

// OnOrderEvent books a payment on delivery and a refund on cancellation.
// Other events are ignored. Idempotent per (orderID, eventKind).
func (n *Notifier) OnOrderEvent(ctx context.Context, event order.Event) error {
	switch event.Kind {
	case order.EventOrderDelivered:
		return n.book(ctx, event.OrderID.Bytes(), EntryPayment, event.TotalAmount, n.Commission(event.TotalAmount))
	case order.EventOrderCancelled:
		return n.book(ctx, event.OrderID.Bytes(), EntryRefund, event.TotalAmount, 0)
	default:
		return nil
	}
}

// Reconcile walks the order store read-only and books the entries that
// delivered and cancelled orders should have by now.
func (n *Notifier) Reconcile(ctx context.Context) error {
	rows, err := n.db.WithContext(ctx).Raw(`
		SELECT id, status, total_amount
		FROM orders
		WHERE status IN ?
	`, []int{int(order.Delivered), int(order.Cancelled)}).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var status int
		var total float64

		if err = rows.Scan(&orderID, &status, &total); err != nil {
			return err
		}

		if order.Status(status) == order.Delivered {
			err = n.book(ctx, orderID, EntryPayment, total, n.Commission(total))
		} else {
			err = n.book(ctx, orderID, EntryRefund, total, 0)
		}
		if err != nil {
			return err
		}
	}

	return rows.Err()
}

func (n *Notifier) book(ctx context.Context, orderID uuid.UUID, kind string, amount, commission float64) error {
	entry := EntryDTO{
		OrderID:    orderID,
		Kind:       kind,
		Amount:     amount,
		Commission: commission,
		CreatedAt:  time.Now().UTC(),
	}

	return n.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(&entry).Error
}
