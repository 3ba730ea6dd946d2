package queries

import (
	"context"
	"strings"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler retrieves pages of order read models. Filters are
// combined with AND; results come back newest first so recently submitted
// orders surface on the first page.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order listings.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the listing. A page past the end of the result set is not
// an error, it simply comes back with no orders.
func (h ListOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListOrdersQuery,
) (ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	where, args := buildListFilter(query.Filter())

	var total int64
	err := h.db.WithContext(ctx).
		Raw(`SELECT count(*) FROM orders`+where, args...).
		Scan(&total).Error
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}

	offset := (query.Page() - 1) * query.Limit()
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+orderColumns+`
		FROM orders`+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, append(args, query.Limit(), offset)...).Rows()
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}
	defer rows.Close()

	views := make([]OrderView, 0, query.Limit())
	for rows.Next() {
		view, scanErr := scanOrderView(rows)
		if scanErr != nil {
			return ListOrdersQueryResponse{}, scanErr
		}
		views = append(views, view)
	}
	if err = rows.Err(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	ids := make([]kernel.UUID, 0, len(views))
	for _, view := range views {
		ids = append(ids, view.ID)
	}
	items, err := loadItems(ctx, h.db, ids)
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}
	for i := range views {
		views[i].Items = items[views[i].ID]
	}

	totalPages := int((total + int64(query.Limit()) - 1) / int64(query.Limit()))

	return ListOrdersQueryResponse{
		Orders:     views,
		Page:       query.Page(),
		Limit:      query.Limit(),
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// buildListFilter renders the optional filters as a WHERE clause.
func buildListFilter(filter ListOrdersFilter) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.Status != order.Unknown {
		conditions = append(conditions, "status = ?")
		args = append(args, int(filter.Status))
	}
	if filter.CustomerID != "" {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.RestaurantID != "" {
		conditions = append(conditions, "restaurant_id = ?")
		args = append(args, filter.RestaurantID)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
