package order

import (
	"storefront/internal/pkg/errs"
)

// Status represents the fulfillment lifecycle state of an order.
// It implements a state machine with defined transitions:
//
//	Pending ──> Confirmed ──> Processing ──> Shipped ──> Delivered
//	   │            │              │            │
//	   └────────────┴──────────────┴────────────┴──> Cancelled (terminal)
//
//	any non-terminal state except Cancelled ──> Refunded (terminal,
//	only once the paired payment has reached Paid; gated by the caller)
//
// The forward chain is monotonic: no transition ever moves backward, and an
// invalid edge is rejected with the state left unchanged.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status right after checkout.
	Pending

	// Confirmed means an operator accepted the order.
	Confirmed

	// Processing means the order is being picked and packed.
	Processing

	// Shipped means the order left the warehouse; a tracking number exists.
	Shipped

	// Delivered means fulfillment finished. Delivered is the end of the
	// forward chain; the only edge out of it is a refund.
	Delivered

	// Cancelled is terminal. Reachable from any state before Delivered.
	Cancelled

	// Refunded is terminal. Reachable only once the payment has been paid.
	Refunded
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Confirmed:  "CONFIRMED",
		Processing: "PROCESSING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
		Refunded:   "REFUNDED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "PENDING",
		Confirmed:  "CONFIRMED",
		Processing: "PROCESSING",
		Shipped:    "SHIPPED",
		Delivered:  "DELIVERED",
		Cancelled:  "CANCELLED",
		Refunded:   "REFUNDED",
	}
}

// StatusFromString parses a wire-level status name ("PENDING", "SHIPPED", ...).
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}

	return Unknown, errs.NewValueIsInvalidError("status " + s)
}

// Validate checks if the Status value is one of the defined states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidError("status")
	}
	return nil
}

// String returns the wire-level name of the status.
// Implements fmt.Stringer; safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Cancelled || s == Refunded
}

// Confirm transitions Pending -> Confirmed.
func (s Status) Confirm() (Status, error) {
	if s != Pending {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Confirmed.String())
	}

	return Confirmed, nil
}

// StartProcessing transitions Confirmed -> Processing.
func (s Status) StartProcessing() (Status, error) {
	if s != Confirmed {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Processing.String())
	}

	return Processing, nil
}

// Ship transitions Processing -> Shipped.
func (s Status) Ship() (Status, error) {
	if s != Processing {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Shipped.String())
	}

	return Shipped, nil
}

// Deliver transitions Shipped -> Delivered.
func (s Status) Deliver() (Status, error) {
	if s != Shipped {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Delivered.String())
	}

	return Delivered, nil
}

// Cancel transitions any state before Delivered to Cancelled.
// A delivered order cannot be cancelled; the money path for it is a refund.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() || s == Delivered || s == Unknown {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Cancelled.String())
	}

	return Cancelled, nil
}

// Refund transitions any non-terminal state to Refunded.
// Callers must additionally verify the paired payment has been paid;
// that invariant lives outside this value object.
func (s Status) Refund() (Status, error) {
	if s.IsTerminal() || s == Unknown {
		return 0, errs.NewInvalidTransitionError("order", s.String(), Refunded.String())
	}

	return Refunded, nil
}
