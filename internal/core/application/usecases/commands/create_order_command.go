package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to submit a new food order.
// Encapsulates the customer and restaurant references, the ordered lines,
// the delivery destination and the payment details.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customerID    string
	restaurantID  string
	items         []order.Item
	address       kernel.Address
	paymentMethod order.PaymentMethod
	charges       order.Charges

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to submit a new order. Validates
// that the order ID is valid, the customer and restaurant references are
// present, at least one item is ordered, and the address, payment method and
// charges pass their own validation.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID string,
	restaurantID string,
	items []order.Item,
	address kernel.Address,
	paymentMethod order.PaymentMethod,
	charges order.Charges,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setRestaurantID(restaurantID),
		cmd.setItems(items),
		cmd.setAddress(address),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setCharges(charges),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier assigned to the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the ordering customer's reference.
func (c CreateOrderCommand) CustomerID() string {
	return c.customerID
}

// RestaurantID returns the restaurant's reference.
func (c CreateOrderCommand) RestaurantID() string {
	return c.restaurantID
}

// Items returns the ordered lines.
func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

// Address returns the delivery destination.
func (c CreateOrderCommand) Address() kernel.Address {
	return c.address
}

// PaymentMethod returns the chosen payment method.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

// Charges returns the delivery fee, tax and tip.
func (c CreateOrderCommand) Charges() order.Charges {
	return c.charges
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(restaurantID string) error {
	if restaurantID == "" {
		return errs.NewValueIsRequiredError("restaurantId")
	}
	c.restaurantID = restaurantID
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	c.items = items
	return nil
}

func (c *CreateOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.paymentMethod = method
	return nil
}

func (c *CreateOrderCommand) setCharges(charges order.Charges) error {
	if err := charges.Validate(); err != nil {
		return err
	}
	c.charges = charges
	return nil
}
