package cmd

import (
	"log/slog"
	"strconv"
	"time"

	"fooddelivery/internal/adapters/out/eventbus"
	"fooddelivery/internal/adapters/out/postgres"
	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/jobs"
	"fooddelivery/internal/notifiers/accounting"
	"fooddelivery/internal/notifiers/delivery"
	"fooddelivery/internal/notifiers/kitchen"
	"fooddelivery/internal/notifiers/notification"

	"gorm.io/gorm"
)

const (
	defaultPrepEstimate     = 30 * time.Minute
	defaultDeliveryEstimate = 20 * time.Minute
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	publisher  *eventbus.Publisher
	job        *jobs.ReconciliationJob
	estimates  commands.Estimates
}

// NewCompositionRoot wires the event publisher, the downstream notifiers and
// the reconciliation job. emailSender and eventRelay are optional; passing
// nil disables customer emails and the broker relay respectively.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	emailSender notification.EmailSender,
	eventRelay ports.EventSubscriber,
	logger *slog.Logger,
) CompositionRoot {
	kitchenNotifier := kitchen.NewNotifier(gormDB, logger)
	deliveryNotifier := delivery.NewNotifier(gormDB, logger)
	accountingNotifier := accounting.NewNotifier(gormDB, commissionRate(cfg), logger)
	notificationNotifier := notification.NewNotifier(gormDB, emailSender, logger)

	publisher := eventbus.NewPublisher(logger)
	publisher.Subscribe(order.EventOrderCreated, kitchenNotifier)
	publisher.Subscribe(order.EventOrderConfirmed, kitchenNotifier)
	publisher.Subscribe(order.EventOrderCancelled, kitchenNotifier)
	publisher.Subscribe(order.EventOrderStatusChanged, deliveryNotifier)
	publisher.Subscribe(order.EventOrderDelivered, deliveryNotifier)
	publisher.Subscribe(order.EventOrderCancelled, deliveryNotifier)
	publisher.Subscribe(order.EventOrderDelivered, accountingNotifier)
	publisher.Subscribe(order.EventOrderCancelled, accountingNotifier)
	publisher.SubscribeAll(notificationNotifier)
	if eventRelay != nil {
		publisher.SubscribeAll(eventRelay)
	}

	job := jobs.NewReconciliationJob(logger)
	job.Register("kitchen", kitchenNotifier)
	job.Register("delivery", deliveryNotifier)
	job.Register("accounting", accountingNotifier)
	job.Register("notification", notificationNotifier)

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:  publisher,
		job:        job,
		estimates:  estimates(cfg),
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.publisher, c.estimates)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) ReconciliationJob() *jobs.ReconciliationJob {
	return c.job
}

func commissionRate(cfg Config) float64 {
	rate, err := strconv.ParseFloat(cfg.CommissionRate, 64)
	if err != nil {
		return accounting.DefaultCommissionRate
	}
	return rate
}

func estimates(cfg Config) commands.Estimates {
	return commands.Estimates{
		Preparation: minutesOrDefault(cfg.PrepEstimateMin, defaultPrepEstimate),
		Delivery:    minutesOrDefault(cfg.DeliveryEstimateMin, defaultDeliveryEstimate),
	}
}

func minutesOrDefault(value string, fallback time.Duration) time.Duration {
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
