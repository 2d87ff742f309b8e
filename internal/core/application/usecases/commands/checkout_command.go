package commands

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/guard"
)

var (
	ErrCheckoutCommandIsNotConstructed = errors.New(
		"CheckoutCommand must be created via NewCheckoutCommand constructor",
	)
)

// CheckoutCommand represents a request to convert a customer's cart into an
// order with its paired payment. Carries the resolved customer profile and
// the delivery details the customer entered.
//
// Example:
//
//	location, _ := kernel.NewLocation(-4.05, 39.65, "Moi Avenue 12", "Mombasa")
//	cmd, err := NewCheckoutCommand(customer, location, nil, payment.Online)
//	if err != nil {
//	    return fmt.Errorf("invalid checkout data: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type CheckoutCommand struct { //nolint:recvcheck //using for validation
	customer          ports.Customer
	delivery          kernel.Location
	scheduledDelivery *time.Time
	method            payment.Method

	guard guard.ConstructorGuard
}

// NewCheckoutCommand creates a checkout command. The customer must carry an id
// and an email address; the delivery location must be a constructed value
// object; the payment method must be a defined one.
func NewCheckoutCommand(
	customer ports.Customer,
	delivery kernel.Location,
	scheduledDelivery *time.Time,
	method payment.Method,
) (CheckoutCommand, error) {
	cmd := CheckoutCommand{
		scheduledDelivery: scheduledDelivery,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomer(customer),
		cmd.setDelivery(delivery),
		cmd.setMethod(method),
	); err != nil {
		return CheckoutCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CheckoutCommand) Validate() error {
	return c.guard.Validate(ErrCheckoutCommandIsNotConstructed)
}

// Customer returns the resolved customer profile placing the order.
func (c CheckoutCommand) Customer() ports.Customer {
	return c.customer
}

// Delivery returns the delivery destination.
func (c CheckoutCommand) Delivery() kernel.Location {
	return c.delivery
}

// ScheduledDelivery returns the requested delivery slot, if any.
func (c CheckoutCommand) ScheduledDelivery() *time.Time {
	return c.scheduledDelivery
}

// Method returns the chosen payment method.
func (c CheckoutCommand) Method() payment.Method {
	return c.method
}

func (c *CheckoutCommand) setCustomer(customer ports.Customer) error {
	if customer.ID == "" {
		return errs.NewValueIsRequiredError("customer.ID")
	}
	if customer.Email == "" {
		return errs.NewValueIsRequiredError("customer.Email")
	}

	c.customer = customer
	return nil
}

func (c *CheckoutCommand) setDelivery(delivery kernel.Location) error {
	if err := delivery.Validate(); err != nil {
		return err
	}

	c.delivery = delivery
	return nil
}

func (c *CheckoutCommand) setMethod(method payment.Method) error {
	if err := method.Validate(); err != nil {
		return err
	}

	c.method = method
	return nil
}
