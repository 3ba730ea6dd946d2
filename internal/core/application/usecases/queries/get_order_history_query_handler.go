package queries

import (
	"context"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler retrieves the status log of one order.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderHistoryQueryHandler creates a handler for history retrieval.
func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle executes the query. Entries come back oldest first, matching the
// order they were appended in. Returns *errs.ObjectNotFoundError when the
// order does not exist; every persisted order has at least one entry, so an
// empty log means an unknown order.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]HistoryEntryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			at,
			note
		FROM order_history
		WHERE order_id = ?
		ORDER BY seq
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntryView, 0)
	for rows.Next() {
		var entry HistoryEntryView
		var status int

		if err = rows.Scan(&status, &entry.At, &entry.Note); err != nil {
			return nil, err
		}

		entry.Status = order.Status(status).String()
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	return entries, nil
}
