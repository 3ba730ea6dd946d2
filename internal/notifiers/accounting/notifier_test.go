package accounting_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fooddelivery/internal/adapters/out/postgres/orderrepo"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/notifiers/accounting"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type AccountingNotifierTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	repo      *orderrepo.GormOrderRepository
	notifier  *accounting.Notifier
}

func (suite *AccountingNotifierTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
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

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{}, &orderrepo.ItemDTO{}, &orderrepo.HistoryDTO{},
		&accounting.EntryDTO{},
	)
	suite.Require().NoError(err)

	suite.repo = orderrepo.NewGormOrderRepository(db, noopTracker{})
	suite.notifier = accounting.NewNotifier(db, 0.05, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (suite *AccountingNotifierTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *AccountingNotifierTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE accounting_entries").Error)
}

func (suite *AccountingNotifierTestSuite) TestOnOrderEvent_Delivered_BooksPaymentWithCommission() {
	ctx := context.Background()
	aggregate := suite.seedDeliveredOrder()

	event := order.EventForTransition(aggregate, "", time.Now().UTC())
	suite.Require().Equal(order.EventOrderDelivered, event.Kind)
	suite.Require().NoError(suite.notifier.OnOrderEvent(ctx, event))

	entry := suite.entryFor(aggregate.ID(), accounting.EntryPayment)
	suite.InDelta(20.0, entry.Amount, 0.0001)
	suite.InDelta(1.0, entry.Commission, 0.0001) // 5% of 20

	// Redelivery must not double-book.
	suite.Require().NoError(suite.notifier.OnOrderEvent(ctx, event))
	suite.assertEntryCount(1)
}

func (suite *AccountingNotifierTestSuite) TestOnOrderEvent_Cancelled_BooksRefund() {
	ctx := context.Background()
	aggregate := suite.seedOrder()
	now := time.Now().UTC()

	suite.Require().NoError(aggregate.Cancel("", now))
	suite.Require().NoError(suite.notifier.OnOrderEvent(ctx, order.EventForTransition(aggregate, "", now)))

	entry := suite.entryFor(aggregate.ID(), accounting.EntryRefund)
	suite.InDelta(20.0, entry.Amount, 0.0001)
	suite.Zero(entry.Commission)
}

func (suite *AccountingNotifierTestSuite) TestOnOrderEvent_OtherEvents_AreIgnored() {
	ctx := context.Background()
	aggregate := suite.seedOrder()

	suite.Require().NoError(suite.notifier.OnOrderEvent(ctx, order.CreatedEvent(aggregate, time.Now().UTC())))

	suite.assertEntryCount(0)
}

func (suite *AccountingNotifierTestSuite) TestReconcile_BooksMissingEntries() {
	ctx := context.Background()

	delivered := suite.seedDeliveredOrder()
	suite.Require().NoError(suite.repo.Update(ctx, delivered))

	cancelled := suite.seedOrder()
	suite.Require().NoError(cancelled.Cancel("", time.Now().UTC()))
	suite.Require().NoError(suite.repo.Update(ctx, cancelled))

	suite.seedOrder() // still pending, no entry expected

	suite.Require().NoError(suite.notifier.Reconcile(ctx))

	suite.assertEntryCount(2)
	suite.entryFor(delivered.ID(), accounting.EntryPayment)
	suite.entryFor(cancelled.ID(), accounting.EntryRefund)

	suite.Require().NoError(suite.notifier.Reconcile(ctx))
	suite.assertEntryCount(2)
}

func (suite *AccountingNotifierTestSuite) seedOrder() *order.Order {
	suite.T().Helper()

	item, err := order.NewItem("menu-1", "Margherita", 2, 10, "")
	suite.Require().NoError(err)
	address, err := kernel.NewAddress("123 Main St", "Springfield", "IL", "62701", nil)
	suite.Require().NoError(err)

	now := time.Now().UTC()
	aggregate, err := order.NewOrder(
		kernel.NewUUID(), "customer-1", "restaurant-1",
		[]order.Item{item}, address, order.PaymentDigitalWallet, order.Charges{},
		now, now.Add(50*time.Minute),
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(context.Background(), aggregate))

	return aggregate
}

func (suite *AccountingNotifierTestSuite) seedDeliveredOrder() *order.Order {
	suite.T().Helper()

	aggregate := suite.seedOrder()
	now := time.Now().UTC()
	for _, step := range []order.Status{
		order.Confirmed, order.Preparing, order.Ready, order.OutForDelivery, order.Delivered,
	} {
		suite.Require().NoError(aggregate.TransitionTo(step, "", now))
	}
	suite.Require().NoError(suite.repo.Update(context.Background(), aggregate))

	return aggregate
}

func (suite *AccountingNotifierTestSuite) entryFor(orderID kernel.UUID, kind string) accounting.EntryDTO {
	suite.T().Helper()
	var entry accounting.EntryDTO
	err := suite.db.First(&entry, "order_id = ? AND kind = ?", orderID.Bytes(), kind).Error
	suite.Require().NoError(err)
	return entry
}

func (suite *AccountingNotifierTestSuite) assertEntryCount(expected int64) {
	suite.T().Helper()
	var count int64
	suite.Require().NoError(suite.db.Model(&accounting.EntryDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestAccountingNotifierTestSuite(t *testing.T) {
	suite.Run(t, new(AccountingNotifierTestSuite))
}
