package commands

import (
	"context"
	"time"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// Estimates holds the fixed preparation and delivery windows used to compute
// an order's estimated delivery time at submission. Both windows are
// configuration constants, not data-derived.
type Estimates struct {
	Preparation time.Duration
	Delivery    time.Duration
}

// Window returns the total estimate window.
func (e Estimates) Window() time.Duration {
	return e.Preparation + e.Delivery
}

// CreateOrderCommandHandler handles the business logic for order submission.
// Creates the order in Pending status with its initial history entry and
// publishes ORDER_CREATED after the transaction commits.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
	estimates  Estimates
}

// NewCreateOrderCommandHandler creates a handler for order submission.
// Requires an OrderUoWFactory for transactional persistence, the event
// publisher, and the configured estimate windows.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	estimates Estimates,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		estimates:  estimates,
	}
}

// Handle processes the order submission command. The order is persisted in a
// transaction; the domain event is published only after a successful commit,
// never before, and publish failures do not affect the result.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.RestaurantID(),
		cmd.Items(),
		cmd.Address(),
		cmd.PaymentMethod(),
		cmd.Charges(),
		now,
		now.Add(h.estimates.Window()),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, order.CreatedEvent(newOrder, now))

	return newOrder, nil
}
