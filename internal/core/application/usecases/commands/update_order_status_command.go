package commands

import (
	"errors"
	"fmt"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/guard"
)

var (
	ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
		"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
	)

	// ErrStatusNotOperatorSettable is returned when the target status has a
	// dedicated operation of its own (shipping, refund) or is not reachable
	// by an operator at all.
	ErrStatusNotOperatorSettable = errors.New("status is not settable through this operation")
)

// UpdateOrderStatusCommand represents an operator moving an order along its
// fulfillment lifecycle: confirm, start processing, mark delivered or cancel.
// Shipping and refunds carry extra semantics and have their own commands.
type UpdateOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status

	guard guard.ConstructorGuard
}

// NewUpdateOrderStatusCommand creates a status update command. The target must
// be one of Confirmed, Processing, Delivered or Cancelled.
func NewUpdateOrderStatusCommand(orderID kernel.UUID, target order.Status) (UpdateOrderStatusCommand, error) {
	cmd := UpdateOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
	); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the status to move the order to.
func (c UpdateOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c *UpdateOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateOrderStatusCommand) setTarget(target order.Status) error {
	switch target {
	case order.Confirmed, order.Processing, order.Delivered, order.Cancelled:
		c.target = target
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrStatusNotOperatorSettable, target)
	}
}
