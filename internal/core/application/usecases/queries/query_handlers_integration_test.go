package queries_test

import (
	"context"
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/postgres/orderrepo"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

// QueryHandlersTestSuite exercises the read side against a real PostgreSQL
// instance. One container is shared by all query handler tests.
type QueryHandlersTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *orderrepo.GormOrderRepository

	getHandler     queries.GetOrderQueryHandler
	historyHandler queries.GetOrderHistoryQueryHandler
	listHandler    queries.ListOrdersQueryHandler
}

func (suite *QueryHandlersTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.ItemDTO{}, &orderrepo.HistoryDTO{})
	suite.Require().NoError(err)

	suite.repo = orderrepo.NewGormOrderRepository(db, noopTracker{})
	suite.getHandler = queries.NewGetOrderQueryHandler(db)
	suite.historyHandler = queries.NewGetOrderHistoryQueryHandler(db)
	suite.listHandler = queries.NewListOrdersQueryHandler(db)
}

func (suite *QueryHandlersTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)
}

func (suite *QueryHandlersTestSuite) TestGetOrder_ReturnsFullReadModel() {
	ctx := context.Background()
	aggregate := suite.createOrder("customer-1", "restaurant-1", 12.50, 2)

	query, err := queries.NewGetOrderQuery(aggregate.ID())
	suite.Require().NoError(err)

	view, err := suite.getHandler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.True(aggregate.ID().IsEqual(view.ID))
	suite.Equal("customer-1", view.CustomerID)
	suite.Equal("restaurant-1", view.RestaurantID)
	suite.Equal("PENDING", view.Status)
	suite.Equal("CREDIT_CARD", view.PaymentMethod)
	suite.InDelta(25.0, view.TotalAmount, 0.0001)
	suite.Require().Len(view.Items, 1)
	suite.Equal(2, view.Items[0].Quantity)
	suite.InDelta(25.0, view.Items[0].Subtotal, 0.0001)
	suite.Equal("Springfield", view.Address.City)
	suite.Nil(view.ActualDeliveryAt)
}

func (suite *QueryHandlersTestSuite) TestGetOrder_NonExistent_ReturnsNotFoundError() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.getHandler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersTestSuite) TestGetOrderHistory_ReturnsEntriesOldestFirst() {
	ctx := context.Background()
	aggregate := suite.createOrder("customer-1", "restaurant-1", 10, 1)

	now := time.Now().UTC()
	suite.Require().NoError(aggregate.TransitionTo(order.Confirmed, "Restaurant accepted", now))
	suite.Require().NoError(aggregate.TransitionTo(order.Preparing, "", now.Add(time.Minute)))
	suite.Require().NoError(suite.repo.Update(ctx, aggregate))

	query, err := queries.NewGetOrderHistoryQuery(aggregate.ID())
	suite.Require().NoError(err)

	entries, err := suite.historyHandler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Require().Len(entries, 3)
	suite.Equal("PENDING", entries[0].Status)
	suite.Equal("CONFIRMED", entries[1].Status)
	suite.Equal("Restaurant accepted", entries[1].Note)
	suite.Equal("PREPARING", entries[2].Status)
}

func (suite *QueryHandlersTestSuite) TestGetOrderHistory_NonExistent_ReturnsNotFoundError() {
	query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.historyHandler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersTestSuite) TestListOrders_EmptyDatabase_ReturnsEmptyPage() {
	query, err := queries.NewListOrdersQuery(1, 10, queries.ListOrdersFilter{})
	suite.Require().NoError(err)

	response, err := suite.listHandler.Handle(context.Background(), query)
	suite.Require().NoError(err)

	suite.NotNil(response.Orders)
	suite.Empty(response.Orders)
	suite.Zero(response.Total)
	suite.Zero(response.TotalPages)
}

func (suite *QueryHandlersTestSuite) TestListOrders_FiltersByStatusAndCustomer() {
	ctx := context.Background()

	pending := suite.createOrder("customer-1", "restaurant-1", 10, 1)
	confirmed := suite.createOrder("customer-1", "restaurant-2", 10, 1)
	suite.Require().NoError(confirmed.TransitionTo(order.Confirmed, "", time.Now().UTC()))
	suite.Require().NoError(suite.repo.Update(ctx, confirmed))
	other := suite.createOrder("customer-2", "restaurant-1", 10, 1)

	query, err := queries.NewListOrdersQuery(1, 10, queries.ListOrdersFilter{
		Status:     order.Pending,
		CustomerID: "customer-1",
	})
	suite.Require().NoError(err)

	response, err := suite.listHandler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Require().Len(response.Orders, 1)
	suite.True(pending.ID().IsEqual(response.Orders[0].ID))
	suite.Equal(int64(1), response.Total)

	_ = other // excluded by the customer filter
}

func (suite *QueryHandlersTestSuite) TestListOrders_Pagination() {
	ctx := context.Background()
	for range 5 {
		suite.createOrder("customer-1", "restaurant-1", 10, 1)
	}

	query, err := queries.NewListOrdersQuery(2, 2, queries.ListOrdersFilter{})
	suite.Require().NoError(err)

	response, err := suite.listHandler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Len(response.Orders, 2)
	suite.Equal(int64(5), response.Total)
	suite.Equal(3, response.TotalPages)
	suite.Equal(2, response.Page)

	// Pages past the end are empty, not an error.
	lastQuery, err := queries.NewListOrdersQuery(4, 2, queries.ListOrdersFilter{})
	suite.Require().NoError(err)
	lastPage, err := suite.listHandler.Handle(ctx, lastQuery)
	suite.Require().NoError(err)
	suite.Empty(lastPage.Orders)
}

func (suite *QueryHandlersTestSuite) TestListOrders_InvalidQuery_ReturnsError() {
	var invalid queries.ListOrdersQuery
	_, err := suite.listHandler.Handle(context.Background(), invalid)
	suite.Require().ErrorIs(err, queries.ErrListOrdersQueryIsNotConstructed)
}

func (suite *QueryHandlersTestSuite) createOrder(customerID, restaurantID string, price float64, quantity int) *order.Order {
	suite.T().Helper()

	item, err := order.NewItem("menu-1", "Margherita", quantity, price, "")
	suite.Require().NoError(err)
	address, err := kernel.NewAddress("123 Main St", "Springfield", "IL", "62701", nil)
	suite.Require().NoError(err)

	now := time.Now().UTC()
	aggregate, err := order.NewOrder(
		kernel.NewUUID(), customerID, restaurantID,
		[]order.Item{item}, address, order.PaymentCreditCard, order.Charges{},
		now, now.Add(50*time.Minute),
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(context.Background(), aggregate))

	return aggregate
}

func TestQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersTestSuite))
}
