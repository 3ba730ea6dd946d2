package order

import (
	"fmt"

	"fooddelivery/internal/pkg/errs"
)

// Item is a single line of an order: a snapshot of the menu item at the time
// the order was placed. Quantity and price are immutable after order creation;
// there are no line-item edits post-submission.
type Item struct {
	menuItemID   string
	name         string
	quantity     int
	price        float64
	instructions string
}

// NewItem creates a validated order line. The name is a snapshot of the menu
// item name, quantity must be at least 1 and price must be non-negative.
func NewItem(menuItemID, name string, quantity int, price float64, instructions string) (Item, error) {
	if menuItemID == "" {
		return Item{}, errs.NewValueIsRequiredError("menuItemId")
	}
	if name == "" {
		return Item{}, errs.NewValueIsRequiredError("name")
	}
	if quantity < 1 {
		return Item{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxItemQuantity)
	}
	if quantity > maxItemQuantity {
		return Item{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxItemQuantity)
	}
	if price < 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%v is negative", price))
	}

	return Item{
		menuItemID:   menuItemID,
		name:         name,
		quantity:     quantity,
		price:        price,
		instructions: instructions,
	}, nil
}

// Sanity cap on a single line's quantity.
const maxItemQuantity = 1000

// MenuItemID returns the referenced menu item's identifier.
func (i Item) MenuItemID() string {
	return i.menuItemID
}

// Name returns the menu item name snapshot.
func (i Item) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i Item) Quantity() int {
	return i.quantity
}

// Price returns the unit price snapshot.
func (i Item) Price() float64 {
	return i.price
}

// Instructions returns the optional per-item special instructions.
func (i Item) Instructions() string {
	return i.instructions
}

// Subtotal returns price multiplied by quantity.
func (i Item) Subtotal() float64 {
	return i.price * float64(i.quantity)
}
