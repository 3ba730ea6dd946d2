package commands

import (
	"context"
	"time"

	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
)

// ChangeOrderStatusCommandHandler applies a validated status transition to an
// order and publishes the matching domain event after the transaction
// commits.
//
// Concurrency: the order row is fetched with a row-level lock held for the
// duration of validate + mutate + append-history, so two racing transitions
// on the same order id serialize; the second one revalidates against the
// committed status and fails with an invalid-transition error. Transitions on
// different orders do not contend.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.EventPublisher
}

// NewChangeOrderStatusCommandHandler creates a handler for status changes.
func NewChangeOrderStatusCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the status change command. Returns the updated order, or
// *errs.ObjectNotFoundError / *errs.InvalidStatusTransitionError when the
// order is missing or the transition is not allowed.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err = aggregate.TransitionTo(cmd.TargetStatus(), cmd.Note(), now); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, order.EventForTransition(aggregate, cmd.Note(), now))

	return aggregate, nil
}
