package order

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ScheduledDeliveryWindow is how far into the future a delivery may be booked.
const ScheduledDeliveryWindow = 30 * 24 * time.Hour

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrNoLineItems is returned when an order is created without any lines.
	ErrNoLineItems = errors.New("order must contain at least one line item")

	// ErrDeliveryAlreadyConfirmed is returned when the customer confirms
	// delivery of an order whose deliveredAt is already set.
	ErrDeliveryAlreadyConfirmed = errors.New("delivery already confirmed")
)

// Order is the immutable snapshot of a purchase taken at checkout. It is the
// aggregate root for fulfillment: after creation the only permitted mutations
// are status transitions, the tracking number recorded on shipping, and the
// one-shot deliveredAt timestamp.
//
// Invariants:
//   - At least one line item; the total equals the sum of line subtotals.
//   - Line items and their prices never change after creation (price lock).
//   - scheduledDelivery, when present, lies in (creation time, +30 days].
//   - deliveredAt is set at most once, and only by the customer's explicit
//     confirm-delivery action — never by an operator status change.
//   - Status transitions follow the rules in Status.
type Order struct {
	id                kernel.UUID
	orderNumber       string
	customerID        string
	lineItems         []LineItem
	total             decimal.Decimal
	status            Status
	deliveryLocation  kernel.Location
	scheduledDelivery *time.Time
	trackingNumber    *string
	deliveredAt       *time.Time
	createdAt         time.Time

	isConstructed bool
}

// NewOrder creates an order in Pending status from snapshotted line items.
// The total is computed here and locked. scheduledDelivery is optional; when
// present it must be strictly after now and at most 30 days out.
func NewOrder(
	id kernel.UUID,
	orderNumber string,
	customerID string,
	lineItems []LineItem,
	deliveryLocation kernel.Location,
	scheduledDelivery *time.Time,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		createdAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
		o.setCustomerID(customerID),
		o.setLineItems(lineItems),
		o.setDeliveryLocation(deliveryLocation),
		o.setScheduledDelivery(scheduledDelivery, now),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an order from persistence, including its current
// status and the optional shipping/delivery fields.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	customerID string,
	lineItems []LineItem,
	total decimal.Decimal,
	status Status,
	deliveryLocation kernel.Location,
	scheduledDelivery *time.Time,
	trackingNumber *string,
	deliveredAt *time.Time,
	createdAt time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		ValidateNumber(orderNumber),
		status.Validate(),
		deliveryLocation.Validate(),
	); err != nil {
		return nil, err
	}

	for _, li := range lineItems {
		if err := li.Validate(); err != nil {
			return nil, err
		}
	}

	return &Order{
		id:                id,
		orderNumber:       orderNumber,
		customerID:        customerID,
		lineItems:         append([]LineItem(nil), lineItems...),
		total:             total,
		status:            status,
		deliveryLocation:  deliveryLocation,
		scheduledDelivery: scheduledDelivery,
		trackingNumber:    trackingNumber,
		deliveredAt:       deliveredAt,
		createdAt:         createdAt,
		isConstructed:     true,
	}, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Number returns the human-readable order number.
func (o *Order) Number() string {
	return o.orderNumber
}

// CustomerID returns the owning customer (or guest session) identifier.
func (o *Order) CustomerID() string {
	return o.customerID
}

// LineItems returns a copy of the order's lines.
func (o *Order) LineItems() []LineItem {
	return append([]LineItem(nil), o.lineItems...)
}

// Total returns the locked order total.
func (o *Order) Total() decimal.Decimal {
	return o.total
}

// Status returns the current fulfillment status.
func (o *Order) Status() Status {
	return o.status
}

// DeliveryLocation returns the delivery destination.
func (o *Order) DeliveryLocation() kernel.Location {
	return o.deliveryLocation
}

// ScheduledDelivery returns the requested delivery slot, if any.
func (o *Order) ScheduledDelivery() *time.Time {
	return o.scheduledDelivery
}

// TrackingNumber returns the carrier tracking identifier, if shipped.
func (o *Order) TrackingNumber() *string {
	return o.trackingNumber
}

// DeliveredAt returns the customer-confirmed delivery time, if confirmed.
// This — not the Delivered status — is what gates product-review eligibility.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// CreatedAt returns the order creation time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Confirm moves the order from Pending to Confirmed.
func (o *Order) Confirm() error {
	newStatus, err := o.status.Confirm()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// StartProcessing moves the order from Confirmed to Processing.
func (o *Order) StartProcessing() error {
	newStatus, err := o.status.StartProcessing()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Ship moves the order from Processing to Shipped and records the carrier
// tracking number. An empty tracking number is rejected.
func (o *Order) Ship(trackingNumber string) error {
	if trackingNumber == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}

	newStatus, err := o.status.Ship()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.trackingNumber = &trackingNumber
	return nil
}

// MarkDelivered is the operator action moving Shipped to Delivered.
// It changes the status only: deliveredAt stays unset until the customer
// confirms receipt through ConfirmDelivery.
func (o *Order) MarkDelivered() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// ConfirmDelivery is the customer's explicit "I received it" action. It sets
// deliveredAt exactly once and advances the status to Delivered if the
// operator had not already marked it. Valid only from Shipped or Delivered.
func (o *Order) ConfirmDelivery(now time.Time) error {
	if o.deliveredAt != nil {
		return ErrDeliveryAlreadyConfirmed
	}

	if o.status != Shipped && o.status != Delivered {
		return errs.NewInvalidTransitionError("order", o.status.String(), Delivered.String())
	}

	confirmedAt := now.UTC()
	o.deliveredAt = &confirmedAt
	o.status = Delivered
	return nil
}

// Cancel moves any pre-delivery state to the terminal Cancelled status.
func (o *Order) Cancel() error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Refund moves the order to the terminal Refunded status. The caller must
// have verified that the paired payment reached Paid; see the refund command.
func (o *Order) Refund() error {
	newStatus, err := o.status.Refund()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	o.id = id
	return nil
}

func (o *Order) setOrderNumber(number string) error {
	if err := ValidateNumber(number); err != nil {
		return err
	}

	o.orderNumber = number
	return nil
}

func (o *Order) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerID")
	}

	o.customerID = customerID
	return nil
}

func (o *Order) setLineItems(lineItems []LineItem) error {
	if len(lineItems) == 0 {
		return ErrNoLineItems
	}

	total := decimal.Zero
	for _, li := range lineItems {
		if err := li.Validate(); err != nil {
			return err
		}
		total = total.Add(li.Subtotal())
	}

	o.lineItems = append([]LineItem(nil), lineItems...)
	o.total = total
	return nil
}

func (o *Order) setDeliveryLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	o.deliveryLocation = location
	return nil
}

func (o *Order) setScheduledDelivery(scheduled *time.Time, now time.Time) error {
	if scheduled == nil {
		return nil
	}

	latest := now.Add(ScheduledDeliveryWindow)
	if !scheduled.After(now) || scheduled.After(latest) {
		return errs.NewValueIsOutOfRangeError(
			"scheduledDelivery", scheduled.Format(time.RFC3339),
			now.Format(time.RFC3339), latest.Format(time.RFC3339),
		)
	}

	utc := scheduled.UTC()
	o.scheduledDelivery = &utc
	return nil
}
