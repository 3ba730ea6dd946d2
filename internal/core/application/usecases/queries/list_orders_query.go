package queries

import (
	"errors"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
)

const (
	// DefaultPageLimit is applied when clients do not ask for a page size.
	DefaultPageLimit = 10

	// MaxPageLimit caps the page size a client may request.
	MaxPageLimit = 100
)

// ListOrdersFilter narrows a listing. Zero values mean "no filter".
type ListOrdersFilter struct {
	Status       order.Status
	CustomerID   string
	RestaurantID string
}

// ListOrdersQuery retrieves a page of orders, newest first, optionally
// filtered by status, customer or restaurant.
type ListOrdersQuery struct {
	page   int
	limit  int
	filter ListOrdersFilter

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a paged listing query. Pages are 1-based;
// page 0 means the first page and limit 0 means DefaultPageLimit.
func NewListOrdersQuery(page, limit int, filter ListOrdersFilter) (ListOrdersQuery, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}

	if page < 1 {
		return ListOrdersQuery{}, errs.NewValueIsInvalidError("page")
	}
	if limit < 1 || limit > MaxPageLimit {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageLimit)
	}
	if filter.Status != order.Unknown {
		if err := filter.Status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}

	return ListOrdersQuery{
		page:   page,
		limit:  limit,
		filter: filter,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Page returns the 1-based page number.
func (q ListOrdersQuery) Page() int {
	return q.page
}

// Limit returns the page size.
func (q ListOrdersQuery) Limit() int {
	return q.limit
}

// Filter returns the optional listing filters.
func (q ListOrdersQuery) Filter() ListOrdersFilter {
	return q.filter
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// ListOrdersQueryResponse is one page of order read models plus the
// pagination block clients use to fetch the rest.
type ListOrdersQueryResponse struct {
	Orders     []OrderView
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}
