package commands

import (
	"errors"

	"fooddelivery/internal/core/domain/model/kernel"
	"fooddelivery/internal/core/domain/model/order"
	"fooddelivery/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ChangeOrderStatusCommand represents a request to move an order to a new
// lifecycle status. Whether the target is actually reachable is decided by
// the aggregate's transition table, not by the command.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	targetStatus order.Status
	note         string

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a command to change an order's status.
// Validates that the order ID and the target status are well-formed; the note
// is optional.
func NewChangeOrderStatusCommand(orderID kernel.UUID, targetStatus order.Status, note string) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		note:  note,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTargetStatus(targetStatus),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to update.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TargetStatus returns the requested status.
func (c ChangeOrderStatusCommand) TargetStatus() order.Status {
	return c.targetStatus
}

// Note returns the optional operator note recorded in the history entry.
func (c ChangeOrderStatusCommand) Note() string {
	return c.note
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setTargetStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.targetStatus = status
	return nil
}
