package commands_test

import (
	"testing"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	existing := storedOrder(t, id)
	require.NoError(t, existing.TransitionTo(order.Confirmed, "", time.Now()))
	require.NoError(t, existing.TransitionTo(order.Preparing, "", time.Now()))

	cmd, err := commands.NewCancelOrderCommand(id, "customer changed mind")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, id).Return(existing, nil).Once(),
		repo.On("Update", mock.Anything, existing).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(SpyPublisher)

	h := commands.NewCancelOrderCommandHandler(factory, publisher)
	cancelled, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, cancelled.Status())

	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, order.EventOrderCancelled, publisher.Events()[0].Kind)
}

func TestCancelOrderCommandHandler_Handle_TerminalOrder(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	existing := storedOrder(t, id)
	require.NoError(t, existing.Cancel("already cancelled", time.Now()))

	cmd, err := commands.NewCancelOrderCommand(id, "again")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, id).Return(existing, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(SpyPublisher)

	h := commands.NewCancelOrderCommandHandler(factory, publisher)
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrInvalidStatusTransition)
	assert.Empty(t, publisher.Events())
}
