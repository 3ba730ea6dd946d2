package queries_test

import (
	"testing"

	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListOrdersQuery_Defaults(t *testing.T) {
	query, err := queries.NewListOrdersQuery(0, 0, queries.ListOrdersFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, query.Page())
	assert.Equal(t, queries.DefaultPageLimit, query.Limit())
}

func TestNewListOrdersQuery_Validation(t *testing.T) {
	t.Run("rejects_negative_page", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(-1, 10, queries.ListOrdersFilter{})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects_oversized_limit", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(1, queries.MaxPageLimit+1, queries.ListOrdersFilter{})
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects_bogus_status_filter", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(1, 10, queries.ListOrdersFilter{Status: order.Status(42)})
		require.Error(t, err)
	})

	t.Run("unconstructed_query_fails_validation", func(t *testing.T) {
		var query queries.ListOrdersQuery
		require.ErrorIs(t, query.Validate(), queries.ErrListOrdersQueryIsNotConstructed)
	})
}

func TestNewGetOrderQuery_Validation(t *testing.T) {
	t.Run("accepts_valid_id", func(t *testing.T) {
		id := kernel.NewUUID()
		query, err := queries.NewGetOrderQuery(id)
		require.NoError(t, err)
		assert.True(t, id.IsEqual(query.OrderID()))
	})

	t.Run("rejects_zero_id", func(t *testing.T) {
		var id kernel.UUID
		_, err := queries.NewGetOrderQuery(id)
		require.Error(t, err)
	})

	t.Run("unconstructed_query_fails_validation", func(t *testing.T) {
		var query queries.GetOrderQuery
		require.ErrorIs(t, query.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestNewGetOrderHistoryQuery_Validation(t *testing.T) {
	t.Run("rejects_zero_id", func(t *testing.T) {
		var id kernel.UUID
		_, err := queries.NewGetOrderHistoryQuery(id)
		require.Error(t, err)
	})

	t.Run("unconstructed_query_fails_validation", func(t *testing.T) {
		var query queries.GetOrderHistoryQuery
		require.ErrorIs(t, query.Validate(), queries.ErrGetOrderHistoryQueryIsNotConstructed)
	})
}
