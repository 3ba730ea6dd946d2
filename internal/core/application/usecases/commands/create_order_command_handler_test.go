package commands_test

import (
	"errors"
	"testing"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testEstimates = commands.Estimates{
	Preparation: 30 * time.Minute,
	Delivery:    20 * time.Minute,
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(SpyPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, publisher, testEstimates)
	created, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, order.Pending, created.Status())
	assert.InDelta(t, 20.0, created.TotalAmount(), 0.0001)
	assert.Equal(t,
		created.CreatedAt().Add(testEstimates.Window()),
		created.EstimatedDeliveryAt())

	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, order.EventOrderCreated, publisher.Events()[0].Kind)

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly
	factory := new(MockOrderUoWFactory)
	publisher := new(SpyPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, publisher, testEstimates)
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Empty(t, publisher.Events())
}

func TestCreateOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateCommand(t)

	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)
	publisher := new(SpyPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, publisher, testEstimates)
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Empty(t, publisher.Events())
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(SpyPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, publisher, testEstimates)
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Empty(t, publisher.Events(), "no event may be published before a successful commit")
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	cmd := validCreateCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.Anything).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit failed")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	publisher := new(SpyPublisher)

	h := commands.NewCreateOrderCommandHandler(factory, publisher, testEstimates)
	_, err := h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.Empty(t, publisher.Events())
}

func TestNewCreateOrderCommand_Validation(t *testing.T) {
	t.Run("rejects_empty_items", func(t *testing.T) {
		_, err := commands.NewCreateOrderCommand(
			kernel.NewUUID(), "customer-1", "restaurant-1",
			nil, validAddress(t), order.PaymentCash, order.Charges{},
		)
		require.Error(t, err)
	})

	t.Run("rejects_blank_customer", func(t *testing.T) {
		_, err := commands.NewCreateOrderCommand(
			kernel.NewUUID(), "", "restaurant-1",
			validItems(t), validAddress(t), order.PaymentCash, order.Charges{},
		)
		require.Error(t, err)
	})
}
