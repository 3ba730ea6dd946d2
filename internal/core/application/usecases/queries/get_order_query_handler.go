package queries

import (
	"context"
	"database/sql"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderColumns is the shared projection for order read models. The column
// order must match scanOrderView.
const orderColumns = `
	id,
	customer_id,
	restaurant_id,
	status,
	payment_method,
	delivery_fee,
	tax,
	tip,
	total_amount,
	address_street,
	address_city,
	address_state,
	address_zip_code,
	address_lat,
	address_lng,
	estimated_delivery_at,
	actual_delivery_at,
	created_at,
	updated_at`

// GetOrderQueryHandler retrieves a single order read model from the database.
// Uses direct SQL for optimal read performance in the CQRS pattern.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order retrieval.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Returns *errs.ObjectNotFoundError when no order
// with the given identifier exists.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return OrderView{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return OrderView{}, err
		}
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	view, err := scanOrderView(rows)
	if err != nil {
		return OrderView{}, err
	}

	items, err := loadItems(ctx, h.db, []kernel.UUID{view.ID})
	if err != nil {
		return OrderView{}, err
	}
	view.Items = items[view.ID]

	return view, nil
}

// scanOrderView reads one row of the orderColumns projection.
func scanOrderView(rows *sql.Rows) (OrderView, error) {
	var view OrderView
	var id uuid.UUID
	var status int
	var lat, lng sql.NullFloat64
	var actualDeliveryAt sql.NullTime

	err := rows.Scan(
		&id,
		&view.CustomerID,
		&view.RestaurantID,
		&status,
		&view.PaymentMethod,
		&view.DeliveryFee,
		&view.Tax,
		&view.Tip,
		&view.TotalAmount,
		&view.Address.Street,
		&view.Address.City,
		&view.Address.State,
		&view.Address.ZipCode,
		&lat,
		&lng,
		&view.EstimatedDeliveryAt,
		&actualDeliveryAt,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		return OrderView{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return OrderView{}, err
	}
	view.ID = orderID
	view.Status = order.Status(status).String()

	if lat.Valid && lng.Valid {
		view.Address.Lat = &lat.Float64
		view.Address.Lng = &lng.Float64
	}
	if actualDeliveryAt.Valid {
		at := actualDeliveryAt.Time
		view.ActualDeliveryAt = &at
	}

	return view, nil
}

// loadItems fetches the order lines for the given order identifiers, grouped
// by order.
func loadItems(ctx context.Context, db *gorm.DB, orderIDs []kernel.UUID) (map[kernel.UUID][]OrderItemView, error) {
	items := make(map[kernel.UUID][]OrderItemView, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id.Bytes())
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			menu_item_id,
			name,
			quantity,
			price,
			instructions
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, id
	`, ids).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rawOrderID uuid.UUID
		var item OrderItemView

		err = rows.Scan(
			&rawOrderID,
			&item.MenuItemID,
			&item.Name,
			&item.Quantity,
			&item.Price,
			&item.Instructions,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(rawOrderID[:])
		if idErr != nil {
			return nil, idErr
		}
		item.Subtotal = item.Price * float64(item.Quantity)
		items[orderID] = append(items[orderID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
