// Package http implements the generated ServerInterface, translating between
// the wire types and application commands and queries.
package http

import (
	"errors"
	"net/http"

	"fooddelivery/internal/core/application/usecases/commands"
	"fooddelivery/internal/core/application/usecases/queries"
	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/generated/servers"
	"fooddelivery/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CustomValidator plugs go-playground/validator into echo so request bodies
// are validated against their struct tags before they reach the domain.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator creates the echo validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *CustomValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Server implements servers.ServerInterface. It coordinates between HTTP
// handlers and application use cases.
type Server struct {
	createOrderHandler  commands.CreateOrderCommandHandler
	changeStatusHandler commands.ChangeOrderStatusCommandHandler
	cancelOrderHandler  commands.CancelOrderCommandHandler

	getOrderHandler   queries.GetOrderQueryHandler
	getHistoryHandler queries.GetOrderHistoryQueryHandler
	listOrdersHandler queries.ListOrdersQueryHandler
}

// NewServer creates the HTTP server with the required command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	changeStatusHandler commands.ChangeOrderStatusCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getHistoryHandler queries.GetOrderHistoryQueryHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:  createOrderHandler,
		changeStatusHandler: changeStatusHandler,
		cancelOrderHandler:  cancelOrderHandler,
		getOrderHandler:     getOrderHandler,
		getHistoryHandler:   getHistoryHandler,
		listOrdersHandler:   listOrdersHandler,
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}
	if err := ctx.Validate(&body); err != nil {
		return err
	}

	items := make([]order.Item, 0, len(body.Items))
	for _, line := range body.Items {
		item, err := order.NewItem(
			line.MenuItemId, line.Name, line.Quantity, line.Price, deref(line.Instructions),
		)
		if err != nil {
			return s.errorResponse(ctx, err)
		}
		items = append(items, item)
	}

	var geo *kernel.GeoPoint
	if body.DeliveryAddress.Lat != nil && body.DeliveryAddress.Lng != nil {
		geo = &kernel.GeoPoint{
			Latitude:  *body.DeliveryAddress.Lat,
			Longitude: *body.DeliveryAddress.Lng,
		}
	}
	address, err := kernel.NewAddress(
		body.DeliveryAddress.Street,
		body.DeliveryAddress.City,
		body.DeliveryAddress.State,
		body.DeliveryAddress.ZipCode,
		geo,
	)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		body.CustomerId,
		body.RestaurantId,
		items,
		address,
		order.PaymentMethod(body.PaymentMethod),
		order.Charges{
			DeliveryFee: derefFloat(body.DeliveryFee),
			Tax:         derefFloat(body.Tax),
			Tip:         derefFloat(body.Tip),
		},
	)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderFromAggregate(created))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromView(view))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(ctx echo.Context, params servers.ListOrdersParams) error {
	var filter queries.ListOrdersFilter
	if params.Status != nil {
		status, err := order.StatusFromString(string(*params.Status))
		if err != nil {
			return s.errorResponse(ctx, err)
		}
		filter.Status = status
	}
	filter.CustomerID = deref(params.CustomerId)
	filter.RestaurantID = deref(params.RestaurantId)

	query, err := queries.NewListOrdersQuery(derefInt(params.Page), derefInt(params.Limit), filter)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	orders := make([]servers.Order, 0, len(response.Orders))
	for _, view := range response.Orders {
		orders = append(orders, orderFromView(view))
	}

	return ctx.JSON(http.StatusOK, servers.OrderList{
		Orders: orders,
		Pagination: servers.Pagination{
			Page:       response.Page,
			Limit:      response.Limit,
			Total:      response.Total,
			TotalPages: response.TotalPages,
		},
	})
}

// GetOrderHistory handles GET /api/v1/orders/{orderId}/history.
func (s *Server) GetOrderHistory(ctx echo.Context, orderId openapi_types.UUID) error {
	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	query, err := queries.NewGetOrderHistoryQuery(id)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	entries, err := s.getHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response := make([]servers.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		response = append(response, servers.HistoryEntry{
			Status: servers.OrderStatus(entry.Status),
			At:     entry.At,
			Note:   optional(entry.Note),
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// UpdateOrderStatus handles PUT /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(ctx echo.Context, orderId openapi_types.UUID) error {
	var body servers.UpdateOrderStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}

	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	target, err := order.StatusFromString(string(body.Status))
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(id, target, deref(body.Note))
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	updated, err := s.changeStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromAggregate(updated))
}

// CancelOrder handles DELETE /api/v1/orders/{orderId}. Orders are never
// hard-deleted; this is a cancellation.
func (s *Server) CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	var body servers.CancelOrderRequest
	if ctx.Request().ContentLength > 0 {
		if err := ctx.Bind(&body); err != nil {
			return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
		}
	}

	id, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	cmd, err := commands.NewCancelOrderCommand(id, deref(body.Reason))
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	if _, err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// errorResponse maps domain errors onto HTTP statuses: validation failures
// become 400, unknown orders 404, rejected transitions 409 and everything
// else a generic 500.
func (s *Server) errorResponse(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return errorJSON(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidStatusTransition):
		return errorJSON(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	default:
		return errorJSON(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func errorJSON(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, servers.Error{Code: code, Message: message})
}

func orderFromAggregate(aggregate *order.Order) servers.Order {
	items := make([]servers.OrderItem, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, servers.OrderItem{
			MenuItemId:   item.MenuItemID(),
			Name:         item.Name(),
			Quantity:     item.Quantity(),
			Price:        item.Price(),
			Subtotal:     item.Subtotal(),
			Instructions: optional(item.Instructions()),
		})
	}

	address := aggregate.Address()
	wireAddress := servers.Address{
		Street:  address.Street(),
		City:    address.City(),
		State:   address.State(),
		ZipCode: address.ZipCode(),
	}
	if geo := address.Geo(); geo != nil {
		lat, lng := geo.Latitude, geo.Longitude
		wireAddress.Lat = &lat
		wireAddress.Lng = &lng
	}

	charges := aggregate.Charges()

	return servers.Order{
		Id:                  aggregate.ID().Bytes(),
		CustomerId:          aggregate.CustomerID(),
		RestaurantId:        aggregate.RestaurantID(),
		Status:              servers.OrderStatus(aggregate.Status().String()),
		Items:               items,
		DeliveryAddress:     wireAddress,
		PaymentMethod:       servers.PaymentMethod(aggregate.PaymentMethod()),
		DeliveryFee:         charges.DeliveryFee,
		Tax:                 charges.Tax,
		Tip:                 charges.Tip,
		TotalAmount:         aggregate.TotalAmount(),
		EstimatedDeliveryAt: aggregate.EstimatedDeliveryAt(),
		ActualDeliveryAt:    aggregate.ActualDeliveryAt(),
		CreatedAt:           aggregate.CreatedAt(),
		UpdatedAt:           aggregate.UpdatedAt(),
	}
}

func orderFromView(view queries.OrderView) servers.Order {
	items := make([]servers.OrderItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, servers.OrderItem{
			MenuItemId:   item.MenuItemID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Subtotal:     item.Subtotal,
			Instructions: optional(item.Instructions),
		})
	}

	return servers.Order{
		Id:           view.ID.Bytes(),
		CustomerId:   view.CustomerID,
		RestaurantId: view.RestaurantID,
		Status:       servers.OrderStatus(view.Status),
		Items:        items,
		DeliveryAddress: servers.Address{
			Street:  view.Address.Street,
			City:    view.Address.City,
			State:   view.Address.State,
			ZipCode: view.Address.ZipCode,
			Lat:     view.Address.Lat,
			Lng:     view.Address.Lng,
		},
		PaymentMethod:       servers.PaymentMethod(view.PaymentMethod),
		DeliveryFee:         view.DeliveryFee,
		Tax:                 view.Tax,
		Tip:                 view.Tip,
		TotalAmount:         view.TotalAmount,
		EstimatedDeliveryAt: view.EstimatedDeliveryAt,
		ActualDeliveryAt:    view.ActualDeliveryAt,
		CreatedAt:           view.CreatedAt,
		UpdatedAt:           view.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
