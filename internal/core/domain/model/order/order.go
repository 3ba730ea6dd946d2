package order

import (
	"errors"
	"fmt"
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder. This ensures all orders are
	// properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
)

// PaymentMethod is the closed set of payment options accepted at submission.
type PaymentMethod string

const (
	PaymentCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentCash          PaymentMethod = "CASH"
	PaymentDigitalWallet PaymentMethod = "DIGITAL_WALLET"
)

// Validate checks that the payment method is one of the accepted options.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentCash, PaymentDigitalWallet:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%q is not a valid payment method", string(m)))
	}
}

// HistoryEntry is one record in an order's append-only status log.
type HistoryEntry struct {
	Status Status
	At     time.Time
	Note   string
}

// Charges are the non-item components of an order's total.
type Charges struct {
	DeliveryFee float64
	Tax         float64
	Tip         float64
}

// Validate rejects negative charge components.
func (c Charges) Validate() error {
	if c.DeliveryFee < 0 {
		return errs.NewValueIsInvalidError("deliveryFee")
	}
	if c.Tax < 0 {
		return errs.NewValueIsInvalidError("tax")
	}
	if c.Tip < 0 {
		return errs.NewValueIsInvalidError("tip")
	}
	return nil
}

// Sum returns fee + tax + tip.
func (c Charges) Sum() float64 {
	return c.DeliveryFee + c.Tax + c.Tip
}

// Order is the aggregate root for the order lifecycle. It is created in
// Pending status and mutated only through TransitionTo and Cancel; orders are
// never hard-deleted, cancellation is a terminal status.
//
// Order maintains these invariants:
//   - at least one line item; items are immutable after creation
//   - the history is append-only and the current status equals the status of
//     the most recent history entry
//   - the total amount is always recomputed from items plus charges
type Order struct {
	id            kernel.UUID
	customerID    string
	restaurantID  string
	items         []Item
	address       kernel.Address
	paymentMethod PaymentMethod
	charges       Charges

	status  Status
	history []HistoryEntry

	estimatedDeliveryAt time.Time
	actualDeliveryAt    *time.Time
	createdAt           time.Time
	updatedAt           time.Time

	isConstructed bool
}

// NewOrder creates a new Order in Pending status with an initial history
// entry. All inputs are validated; the estimated delivery time is computed by
// the caller from the configured preparation and delivery windows.
func NewOrder(
	id kernel.UUID,
	customerID string,
	restaurantID string,
	items []Item,
	address kernel.Address,
	paymentMethod PaymentMethod,
	charges Charges,
	now time.Time,
	estimatedDeliveryAt time.Time,
) (*Order, error) {
	o := &Order{
		status:              Pending,
		estimatedDeliveryAt: estimatedDeliveryAt,
		createdAt:           now,
		updatedAt:           now,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setAddress(address),
		o.setPaymentMethod(paymentMethod),
		o.setCharges(charges),
	); err != nil {
		return nil, err
	}

	o.history = append(o.history, HistoryEntry{Status: Pending, At: now, Note: "Order created"})

	return o, nil
}

// Snapshot carries every persisted attribute of an order. Used by storage
// adapters to reconstruct aggregates via RestoreOrder.
type Snapshot struct {
	ID                  kernel.UUID
	CustomerID          string
	RestaurantID        string
	Items               []Item
	Address             kernel.Address
	PaymentMethod       PaymentMethod
	Charges             Charges
	Status              Status
	History             []HistoryEntry
	EstimatedDeliveryAt time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RestoreOrder reconstructs an order from persistence. It revalidates the
// aggregate invariants so corrupt rows cannot produce an invalid aggregate.
func RestoreOrder(snap Snapshot) (*Order, error) {
	o := &Order{
		status:              snap.Status,
		estimatedDeliveryAt: snap.EstimatedDeliveryAt,
		actualDeliveryAt:    snap.ActualDeliveryAt,
		createdAt:           snap.CreatedAt,
		updatedAt:           snap.UpdatedAt,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(snap.ID),
		o.setCustomerID(snap.CustomerID),
		o.setRestaurantID(snap.RestaurantID),
		o.setItems(snap.Items),
		o.setAddress(snap.Address),
		o.setPaymentMethod(snap.PaymentMethod),
		o.setCharges(snap.Charges),
		snap.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if len(snap.History) == 0 {
		return nil, errs.NewValueIsRequiredError("history")
	}
	if snap.History[len(snap.History)-1].Status != snap.Status {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"history",
			fmt.Errorf("status %s does not match last history entry %s",
				snap.Status, snap.History[len(snap.History)-1].Status),
		)
	}
	o.history = append(o.history, snap.History...)

	return o, nil
}

// Validate ensures the Order instance was properly constructed through
// NewOrder or RestoreOrder. This prevents bypassing validation by directly
// instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the identifier of the ordering customer.
func (o *Order) CustomerID() string {
	return o.customerID
}

// RestaurantID returns the identifier of the restaurant preparing the order.
func (o *Order) RestaurantID() string {
	return o.restaurantID
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// Address returns the delivery destination.
func (o *Order) Address() kernel.Address {
	return o.address
}

// PaymentMethod returns the payment method chosen at submission.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// Charges returns the non-item charge components.
func (o *Order) Charges() Charges {
	return o.charges
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// History returns a copy of the append-only status log, oldest first.
func (o *Order) History() []HistoryEntry {
	history := make([]HistoryEntry, len(o.history))
	copy(history, o.history)
	return history
}

// TotalAmount recomputes the order total: the sum of item subtotals plus
// delivery fee, tax and tip. The total is never stored independently.
func (o *Order) TotalAmount() float64 {
	total := o.charges.Sum()
	for _, item := range o.items {
		total += item.Subtotal()
	}
	return total
}

// EstimatedDeliveryAt returns the delivery estimate computed at submission.
func (o *Order) EstimatedDeliveryAt() time.Time {
	return o.estimatedDeliveryAt
}

// ActualDeliveryAt returns the actual delivery timestamp, or nil while the
// order has not reached Delivered.
func (o *Order) ActualDeliveryAt() *time.Time {
	if o.actualDeliveryAt == nil {
		return nil
	}
	t := *o.actualDeliveryAt
	return &t
}

// CreatedAt returns the submission timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the timestamp of the last committed mutation.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// TransitionTo applies a validated status change. On success it appends a
// history entry and updates the status and updatedAt. When the target is
// Delivered it also stamps the actual delivery time.
//
// Returns *errs.InvalidStatusTransitionError when target is not reachable
// from the current status.
func (o *Order) TransitionTo(target Status, note string, now time.Time) error {
	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.history = append(o.history, HistoryEntry{Status: newStatus, At: now, Note: note})
	o.updatedAt = now
	if newStatus == Delivered {
		o.actualDeliveryAt = &now
	}

	return nil
}

// Cancel transitions the order to Cancelled with the given reason. Fails with
// *errs.InvalidStatusTransitionError when the order is already in a terminal
// state.
func (o *Order) Cancel(reason string, now time.Time) error {
	if reason == "" {
		reason = "Order cancelled by customer"
	}
	return o.TransitionTo(Cancelled, reason, now)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setRestaurantID(restaurantID string) error {
	if restaurantID == "" {
		return errs.NewValueIsRequiredError("restaurantId")
	}
	o.restaurantID = restaurantID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}

func (o *Order) setCharges(charges Charges) error {
	if err := charges.Validate(); err != nil {
		return err
	}
	o.charges = charges
	return nil
}
