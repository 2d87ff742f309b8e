package commands

import (
	"errors"
	"fmt"

	"storefront/internal/core/domain/model/payment"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentCallbackCommandIsNotConstructed = errors.New(
		"PaymentCallbackCommand must be created via NewPaymentCallbackCommand constructor",
	)

	// ErrStatusNotReportable is returned when a callback reports a status the
	// gateway has no business reporting (e.g. REFUNDED or PENDING).
	ErrStatusNotReportable = errors.New("status is not reportable by the gateway")
)

// PaymentCallbackCommand represents an authenticated gateway callback about
// an online payment, keyed by the external reference issued at checkout.
// Authentication of the callback itself happens at the transport layer; by
// the time this command exists the caller is trusted to be the gateway.
type PaymentCallbackCommand struct { //nolint:recvcheck //using for validation
	externalReference string
	reported          payment.Status
	amount            decimal.Decimal
	receiptNumber     string

	guard guard.ConstructorGuard
}

// NewPaymentCallbackCommand creates a callback command. The reference is
// required, the amount must be positive, and the reported status must be one
// the gateway can legitimately report: PROCESSING, PAID or FAILED.
func NewPaymentCallbackCommand(
	externalReference string,
	reported payment.Status,
	amount decimal.Decimal,
	receiptNumber string,
) (PaymentCallbackCommand, error) {
	cmd := PaymentCallbackCommand{
		receiptNumber: receiptNumber,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setExternalReference(externalReference),
		cmd.setReported(reported),
		cmd.setAmount(amount),
	); err != nil {
		return PaymentCallbackCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PaymentCallbackCommand) Validate() error {
	return c.guard.Validate(ErrPaymentCallbackCommandIsNotConstructed)
}

// ExternalReference returns the gateway session reference.
func (c PaymentCallbackCommand) ExternalReference() string {
	return c.externalReference
}

// Reported returns the payment status the gateway reports.
func (c PaymentCallbackCommand) Reported() payment.Status {
	return c.reported
}

// Amount returns the amount the gateway settled or attempted.
func (c PaymentCallbackCommand) Amount() decimal.Decimal {
	return c.amount
}

// ReceiptNumber returns the gateway receipt, present on successful payments.
func (c PaymentCallbackCommand) ReceiptNumber() string {
	return c.receiptNumber
}

func (c *PaymentCallbackCommand) setExternalReference(reference string) error {
	if reference == "" {
		return errs.NewValueIsRequiredError("externalReference")
	}

	c.externalReference = reference
	return nil
}

func (c *PaymentCallbackCommand) setReported(reported payment.Status) error {
	switch reported {
	case payment.Processing, payment.Paid, payment.Failed:
		c.reported = reported
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrStatusNotReportable, reported)
	}
}

func (c *PaymentCallbackCommand) setAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidError("amount")
	}

	c.amount = amount
	return nil
}
