package notification

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"
)

// EventType classifies what a notification is about. Each accepted state
// transition maps to exactly one event type; CartReminder is the synthetic
// type used by abandoned-cart recovery.
type EventType string

const (
	OrderConfirmation EventType = "ORDER_CONFIRMATION"
	PaymentReceived   EventType = "PAYMENT_RECEIVED"
	PaymentFailed     EventType = "PAYMENT_FAILED"
	OrderShipped      EventType = "ORDER_SHIPPED"
	OrderDelivered    EventType = "ORDER_DELIVERED"
	CartReminder      EventType = "CART_REMINDER"
)

// Validate checks if the EventType is one of the defined values.
func (e EventType) Validate() error {
	switch e {
	case OrderConfirmation, PaymentReceived, PaymentFailed, OrderShipped, OrderDelivered, CartReminder:
		return nil
	default:
		return errs.NewValueIsInvalidError("eventType " + string(e))
	}
}

// Channel identifies the transport a message goes out on.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"

	// ChannelChat is the chat-app messaging channel. Known limitation: the
	// provider integration renders SMS-shaped plain-text bodies rather than
	// native chat semantics; records still carry the CHAT channel name.
	ChannelChat Channel = "CHAT"
)

// Validate checks if the Channel is one of the defined values.
func (c Channel) Validate() error {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelChat:
		return nil
	default:
		return errs.NewValueIsInvalidError("channel " + string(c))
	}
}

// Status is the delivery state of a single record.
//
//	StatusPending ──> StatusSent ──> StatusDelivered
//	      │
//	      └──> StatusFailed (kept for audit; explicit resend moves it back
//	           through Pending)
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusFailed    Status = "FAILED"
	StatusDelivered Status = "DELIVERED"
)

// Validate checks if the Status is one of the defined values.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusSent, StatusFailed, StatusDelivered:
		return nil
	default:
		return errs.NewValueIsInvalidError("notificationStatus " + string(s))
	}
}

// ErrRecordIsNotConstructed is returned when a Record was not created through
// NewRecord or RestoreRecord.
var ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord or RestoreRecord constructor")

// Record is the audit row for one channel of one dispatched event. It is
// created Pending before the transport is called and updated in place with
// the outcome. Failed records are never deleted; they are the handle for the
// explicit resend operation.
type Record struct {
	id         kernel.UUID
	orderID    *kernel.UUID
	eventType  EventType
	channel    Channel
	recipient  string
	subject    string
	body       string
	status     Status
	attempts   int
	lastError  *string
	providerID *string
	createdAt  time.Time
	updatedAt  time.Time

	isConstructed bool
}

// NewRecord creates a Pending record ready for a send attempt.
// The orderID is optional: cart reminders have no order yet.
func NewRecord(
	id kernel.UUID,
	orderID *kernel.UUID,
	eventType EventType,
	channel Channel,
	recipient string,
	subject string,
	body string,
	now time.Time,
) (*Record, error) {
	if err := errors.Join(id.Validate(), eventType.Validate(), channel.Validate()); err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, errs.NewValueIsRequiredError("recipient")
	}
	if body == "" {
		return nil, errs.NewValueIsRequiredError("body")
	}

	created := now.UTC()
	return &Record{
		id:            id,
		orderID:       orderID,
		eventType:     eventType,
		channel:       channel,
		recipient:     recipient,
		subject:       subject,
		body:          body,
		status:        StatusPending,
		createdAt:     created,
		updatedAt:     created,
		isConstructed: true,
	}, nil
}

// RestoreRecord reconstructs a record from persistence.
func RestoreRecord(
	id kernel.UUID,
	orderID *kernel.UUID,
	eventType EventType,
	channel Channel,
	recipient string,
	subject string,
	body string,
	status Status,
	attempts int,
	lastError *string,
	providerID *string,
	createdAt time.Time,
	updatedAt time.Time,
) (*Record, error) {
	if err := errors.Join(
		id.Validate(), eventType.Validate(), channel.Validate(), status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Record{
		id:            id,
		orderID:       orderID,
		eventType:     eventType,
		channel:       channel,
		recipient:     recipient,
		subject:       subject,
		body:          body,
		status:        status,
		attempts:      attempts,
		lastError:     lastError,
		providerID:    providerID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Record was created through a constructor.
func (r *Record) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}

	return nil
}

// ID returns the record's unique identifier.
func (r *Record) ID() kernel.UUID { return r.id }

// OrderID returns the related order, if any.
func (r *Record) OrderID() *kernel.UUID { return r.orderID }

// EventType returns what the message is about.
func (r *Record) EventType() EventType { return r.eventType }

// Channel returns the transport channel.
func (r *Record) Channel() Channel { return r.channel }

// Recipient returns the address the message goes to.
func (r *Record) Recipient() string { return r.recipient }

// Subject returns the rendered subject (empty for subjectless channels).
func (r *Record) Subject() string { return r.subject }

// Body returns the rendered message body.
func (r *Record) Body() string { return r.body }

// Status returns the current delivery status.
func (r *Record) Status() Status { return r.status }

// Attempts returns how many sends have been attempted for this record.
func (r *Record) Attempts() int { return r.attempts }

// LastError returns the captured transport error of the latest failed attempt.
func (r *Record) LastError() *string { return r.lastError }

// ProviderID returns the transport provider's message id, when reported.
func (r *Record) ProviderID() *string { return r.providerID }

// CreatedAt returns the record creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the time of the latest status change.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// BeginAttempt counts a send attempt against this record.
func (r *Record) BeginAttempt(now time.Time) {
	r.attempts++
	r.updatedAt = now.UTC()
}

// MarkSent records a successful handoff to the transport provider.
func (r *Record) MarkSent(providerID string, now time.Time) {
	r.status = StatusSent
	r.lastError = nil
	if providerID != "" {
		r.providerID = &providerID
	}
	r.updatedAt = now.UTC()
}

// MarkFailed records a transport failure. The record is kept, never deleted.
func (r *Record) MarkFailed(sendErr error, now time.Time) {
	r.status = StatusFailed
	msg := sendErr.Error()
	r.lastError = &msg
	r.updatedAt = now.UTC()
}

// MarkDelivered records an asynchronous delivery confirmation from the
// provider. Only a sent record can become delivered.
func (r *Record) MarkDelivered(now time.Time) error {
	if r.status != StatusSent {
		return errs.NewInvalidTransitionError("notification", string(r.status), string(StatusDelivered))
	}

	r.status = StatusDelivered
	r.updatedAt = now.UTC()
	return nil
}

// ResetForResend moves a failed record back to Pending for an explicit,
// operator-driven resend. Only failed records can be resent.
func (r *Record) ResetForResend(now time.Time) error {
	if r.status != StatusFailed {
		return errs.NewInvalidTransitionError("notification", string(r.status), string(StatusPending))
	}

	r.status = StatusPending
	r.updatedAt = now.UTC()
	return nil
}
