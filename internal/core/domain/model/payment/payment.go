package payment

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrPaymentIsNotConstructed is returned when a Payment was not created
	// through NewPayment or RestorePayment.
	ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewPayment or RestorePayment constructor")

	// ErrNotOnlinePayment is returned when a gateway operation targets a
	// cash-on-delivery payment. COD status is informational only and is
	// never advanced by the machine.
	ErrNotOnlinePayment = errors.New("gateway transitions apply only to online payments")

	// ErrReferenceAlreadySet is returned when a second gateway session is
	// attached to a payment that already has an external reference.
	ErrReferenceAlreadySet = errors.New("external reference already set")
)

// Payment is the money side of an order: one-to-one with the order aggregate,
// linked by order id, never embedded in it. The amount equals the order total
// at creation and is immutable afterwards; callbacks disagreeing with it are
// rejected before any state change.
type Payment struct {
	id                kernel.UUID
	orderID           kernel.UUID
	method            Method
	status            Status
	amount            decimal.Decimal
	externalReference *string
	receiptNumber     *string
	paidAt            *time.Time
	createdAt         time.Time

	isConstructed bool
}

// NewPayment creates a Pending payment for an order.
// The amount must be positive; it is the order total locked at checkout.
func NewPayment(
	id kernel.UUID,
	orderID kernel.UUID,
	method Method,
	amount decimal.Decimal,
	now time.Time,
) (*Payment, error) {
	p := &Payment{
		status:        Pending,
		createdAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		p.setID(id),
		p.setOrderID(orderID),
		p.setMethod(method),
		p.setAmount(amount),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePayment reconstructs a payment from persistence.
func RestorePayment(
	id kernel.UUID,
	orderID kernel.UUID,
	method Method,
	status Status,
	amount decimal.Decimal,
	externalReference *string,
	receiptNumber *string,
	paidAt *time.Time,
	createdAt time.Time,
) (*Payment, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		method.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Payment{
		id:                id,
		orderID:           orderID,
		method:            method,
		status:            status,
		amount:            amount,
		externalReference: externalReference,
		receiptNumber:     receiptNumber,
		paidAt:            paidAt,
		createdAt:         createdAt,
		isConstructed:     true,
	}, nil
}

// Validate ensures the Payment was created through a constructor.
func (p *Payment) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPaymentIsNotConstructed
	}

	return nil
}

// ID returns the payment's unique identifier.
func (p *Payment) ID() kernel.UUID {
	return p.id
}

// OrderID returns the paired order's identifier.
func (p *Payment) OrderID() kernel.UUID {
	return p.orderID
}

// Method returns the payment method.
func (p *Payment) Method() Method {
	return p.method
}

// Status returns the current payment status.
func (p *Payment) Status() Status {
	return p.status
}

// Amount returns the amount due, equal to the order total at creation.
func (p *Payment) Amount() decimal.Decimal {
	return p.amount
}

// ExternalReference returns the gateway session reference for online payments.
func (p *Payment) ExternalReference() *string {
	return p.externalReference
}

// ReceiptNumber returns the gateway receipt, set when the payment is paid.
func (p *Payment) ReceiptNumber() *string {
	return p.receiptNumber
}

// PaidAt returns the settlement time, set at most once.
func (p *Payment) PaidAt() *time.Time {
	return p.paidAt
}

// CreatedAt returns the payment creation time.
func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

// AttachExternalReference stores the gateway session reference obtained when
// an online payment session is opened. The reference is set at most once and
// is the key all subsequent callbacks are matched by.
func (p *Payment) AttachExternalReference(reference string) error {
	if p.method != Online {
		return ErrNotOnlinePayment
	}
	if reference == "" {
		return errs.NewValueIsRequiredError("externalReference")
	}
	if p.externalReference != nil {
		return ErrReferenceAlreadySet
	}

	p.externalReference = &reference
	return nil
}

// VerifyAmount checks a callback's amount against the stored amount.
// A mismatch is an ExternalCallbackError: the callback is rejected and no
// state changes.
func (p *Payment) VerifyAmount(amount decimal.Decimal) error {
	if !p.amount.Equal(amount) {
		ref := ""
		if p.externalReference != nil {
			ref = *p.externalReference
		}
		return errs.NewCallbackRejectedErrorWithCause(ref, "amount mismatch",
			fmt.Errorf("callback amount %s, payment amount %s", amount, p.amount))
	}

	return nil
}

// ApplyGatewayStatus advances an online payment to the status reported by an
// authenticated gateway callback. The decision is made against the current
// status, not arrival order:
//
//   - reported == current: duplicate delivery, no-op, applied=false, no error;
//   - a valid edge: the transition is applied, applied=true;
//   - anything else (e.g. Processing reported after Paid): rejected with a
//     TransitionError and the state left unchanged.
//
// COD payments are never advanced this way.
func (p *Payment) ApplyGatewayStatus(reported Status, receiptNumber string, now time.Time) (bool, error) {
	if p.method != Online {
		return false, ErrNotOnlinePayment
	}

	if reported == p.status {
		return false, nil
	}

	switch reported {
	case Processing:
		newStatus, err := p.status.Process()
		if err != nil {
			return false, err
		}
		p.status = newStatus

	case Paid:
		newStatus, err := p.status.Pay()
		if err != nil {
			return false, err
		}
		p.status = newStatus
		if p.paidAt == nil {
			paidAt := now.UTC()
			p.paidAt = &paidAt
		}
		if receiptNumber != "" {
			p.receiptNumber = &receiptNumber
		}

	case Failed:
		newStatus, err := p.status.Fail()
		if err != nil {
			return false, err
		}
		p.status = newStatus

	default:
		return false, errs.NewInvalidTransitionError("payment", p.status.String(), reported.String())
	}

	return true, nil
}

// Refund moves a paid payment to the terminal Refunded status.
func (p *Payment) Refund() error {
	newStatus, err := p.status.Refund()
	if err != nil {
		return err
	}

	p.status = newStatus
	return nil
}

func (p *Payment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	p.id = id
	return nil
}

func (p *Payment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	p.orderID = orderID
	return nil
}

func (p *Payment) setMethod(method Method) error {
	if err := method.Validate(); err != nil {
		return err
	}

	p.method = method
	return nil
}

func (p *Payment) setAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is not greater than 0", amount))
	}

	p.amount = amount
	return nil
}
