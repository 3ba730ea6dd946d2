package commands_test

import (
	"context"
	"testing"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// SpyPublisher records published events for assertions.
type SpyPublisher struct {
	events []order.Event
}

func (p *SpyPublisher) Publish(_ context.Context, event order.Event) {
	p.events = append(p.events, event)
}

func (p *SpyPublisher) Events() []order.Event {
	return p.events
}

func validItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem("menu-1", "Margherita", 2, 10, "")
	require.NoError(t, err)
	return []order.Item{item}
}

func validAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewAddress("123 Main St", "Springfield", "IL", "62701", nil)
	require.NoError(t, err)
	return addr
}

func validCreateCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), "customer-1", "restaurant-1",
		validItems(t), validAddress(t), order.PaymentCreditCard, order.Charges{},
	)
	require.NoError(t, err)
	return cmd
}

func storedOrder(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	now := time.Now().UTC()
	o, err := order.NewOrder(
		id, "customer-1", "restaurant-1",
		validItems(t), validAddress(t), order.PaymentCreditCard, order.Charges{},
		now, now.Add(50*time.Minute),
	)
	require.NoError(t, err)
	return o
}
