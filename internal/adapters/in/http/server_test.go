package http_test

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adapter "fooddelivery/internal/adapters/in/http"
	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/core/ports"
	"fooddelivery/internal/generated/servers"
	"fooddelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory stand-in for the order repository so handler
// tests do not need a database.
type memoryRepo struct {
	orders map[string]*order.Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[string]*order.Order)}
}

func (r *memoryRepo) Add(_ context.Context, aggregate *order.Order) error {
	r.orders[aggregate.ID().String()] = aggregate
	return nil
}

func (r *memoryRepo) Update(_ context.Context, aggregate *order.Order) error {
	if _, ok := r.orders[aggregate.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	r.orders[aggregate.ID().String()] = aggregate
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	aggregate, ok := r.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return aggregate, nil
}

func (r *memoryRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

type memoryUoW struct {
	repo *memoryRepo
}

func (u *memoryUoW) Begin(context.Context) error            { return nil }
func (u *memoryUoW) Commit(context.Context) error           { return nil }
func (u *memoryUoW) Rollback(context.Context) error         { return nil }
func (u *memoryUoW) OrderRepository() ports.OrderRepository { return u.repo }

type memoryUoWFactory struct {
	repo *memoryRepo
}

func (f *memoryUoWFactory) Create() commands.OrderUoW { return &memoryUoW{repo: f.repo} }

type dropPublisher struct{}

func (dropPublisher) Publish(context.Context, order.Event) {}

func newTestApp(t *testing.T) (*echo.Echo, *memoryRepo) {
	t.Helper()

	repo := newMemoryRepo()
	factory := &memoryUoWFactory{repo: repo}
	publisher := dropPublisher{}
	estimates := commands.Estimates{Preparation: 30 * time.Minute, Delivery: 20 * time.Minute}

	server := adapter.NewServer(
		commands.NewCreateOrderCommandHandler(factory, publisher, estimates),
		commands.NewChangeOrderStatusCommandHandler(factory, publisher),
		commands.NewCancelOrderCommandHandler(factory, publisher),
		queries.GetOrderQueryHandler{},
		queries.GetOrderHistoryQueryHandler{},
		queries.ListOrdersQueryHandler{},
	)

	e := echo.New()
	e.Validator = adapter.NewValidator()
	servers.RegisterHandlersWithBaseURL(e, server, "/api/v1")

	return e, repo
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validOrderBody = `{
	"customerId": "customer-1",
	"restaurantId": "restaurant-1",
	"items": [{"menuItemId": "menu-1", "name": "Margherita", "quantity": 2, "price": 10}],
	"deliveryAddress": {"street": "123 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701"},
	"paymentMethod": "CREDIT_CARD",
	"deliveryFee": 2.5,
	"tax": 1.5,
	"tip": 1
}`

func TestCreateOrder_Success(t *testing.T) {
	e, repo := newTestApp(t)

	rec := doJSON(e, nethttp.MethodPost, "/api/v1/orders", validOrderBody)

	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())

	var created servers.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, servers.PENDING, created.Status)
	assert.InDelta(t, 25.0, created.TotalAmount, 0.0001)
	assert.Len(t, repo.orders, 1)
}

func TestCreateOrder_MissingFields_Returns400(t *testing.T) {
	e, repo := newTestApp(t)

	rec := doJSON(e, nethttp.MethodPost, "/api/v1/orders", `{"customerId": "customer-1"}`)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.orders)
}

func TestCreateOrder_EmptyItems_Returns400(t *testing.T) {
	e, _ := newTestApp(t)

	body := strings.Replace(validOrderBody,
		`"items": [{"menuItemId": "menu-1", "name": "Margherita", "quantity": 2, "price": 10}]`,
		`"items": []`, 1)
	rec := doJSON(e, nethttp.MethodPost, "/api/v1/orders", body)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	rec := doJSON(e, nethttp.MethodPut, "/api/v1/orders/"+id+"/status",
		`{"status": "CONFIRMED", "note": "Restaurant accepted"}`)

	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())

	var updated servers.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, servers.CONFIRMED, updated.Status)
}

func TestUpdateOrderStatus_SkippingAStep_Returns409(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	rec := doJSON(e, nethttp.MethodPut, "/api/v1/orders/"+id+"/status", `{"status": "READY"}`)

	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func TestUpdateOrderStatus_UnknownStatus_Returns400(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	rec := doJSON(e, nethttp.MethodPut, "/api/v1/orders/"+id+"/status", `{"status": "SHIPPED"}`)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatus_UnknownOrder_Returns404(t *testing.T) {
	e, _ := newTestApp(t)

	rec := doJSON(e, nethttp.MethodPut,
		"/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status": "CONFIRMED"}`)

	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus_MalformedId_Returns400(t *testing.T) {
	e, _ := newTestApp(t)

	rec := doJSON(e, nethttp.MethodPut, "/api/v1/orders/not-a-uuid/status", `{"status": "CONFIRMED"}`)

	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestCancelOrder_Returns204(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	rec := doJSON(e, nethttp.MethodDelete, "/api/v1/orders/"+id, `{"reason": "changed my mind"}`)

	require.Equal(t, nethttp.StatusNoContent, rec.Code, rec.Body.String())

	stored := repo.orders[id]
	assert.Equal(t, order.Cancelled, stored.Status())
	history := stored.History()
	assert.Equal(t, "changed my mind", history[len(history)-1].Note)
}

func TestCancelOrder_WithoutBody_Succeeds(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	rec := doJSON(e, nethttp.MethodDelete, "/api/v1/orders/"+id, "")

	require.Equal(t, nethttp.StatusNoContent, rec.Code)
	assert.Equal(t, order.Cancelled, repo.orders[id].Status())
}

func TestCancelOrder_DeliveredOrder_Returns409(t *testing.T) {
	e, repo := newTestApp(t)
	id := seedOrder(t, repo)

	now := time.Now().UTC()
	for _, step := range []order.Status{
		order.Confirmed, order.Preparing, order.Ready, order.OutForDelivery, order.Delivered,
	} {
		require.NoError(t, repo.orders[id].TransitionTo(step, "", now))
	}

	rec := doJSON(e, nethttp.MethodDelete, "/api/v1/orders/"+id, "")

	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func seedOrder(t *testing.T, repo *memoryRepo) string {
	t.Helper()

	item, err := order.NewItem("menu-1", "Margherita", 2, 10, "")
	require.NoError(t, err)
	address, err := kernel.NewAddress("123 Main St", "Springfield", "IL", "62701", nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	aggregate, err := order.NewOrder(
		kernel.NewUUID(), "customer-1", "restaurant-1",
		[]order.Item{item}, address, order.PaymentCreditCard, order.Charges{},
		now, now.Add(50*time.Minute),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), aggregate))

	return aggregate.ID().String()
}
