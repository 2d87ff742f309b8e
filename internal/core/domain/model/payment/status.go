package payment

import (
	"storefront/internal/pkg/errs"
)

// Status represents the payment lifecycle state.
//
//	Pending ──> Processing ──> Paid ──> Refunded (terminal)
//	   │            │
//	   └────────────┴──> Failed ──> Processing (retry)
//
// Failed is retryable: a customer may restart an online payment, which moves
// the payment back to Processing. Paid and Refunded never move backward.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Pending is the initial status at order creation.
	Pending

	// Processing means a gateway session is underway.
	Processing

	// Paid means the gateway confirmed settlement.
	Paid

	// Failed means the gateway reported a failure. Retryable.
	Failed

	// Refunded is terminal.
	Refunded
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "UNKNOWN",
		Pending:       "PENDING",
		Processing:    "PROCESSING",
		Paid:          "PAID",
		Failed:        "FAILED",
		Refunded:      "REFUNDED",
	}
}

// StatusFromString parses a wire-level payment status name.
func StatusFromString(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != StatusUnknown && name == s {
			return status, nil
		}
	}

	return StatusUnknown, errs.NewValueIsInvalidError("paymentStatus " + s)
}

// Validate checks if the Status is one of the defined states.
func (s Status) Validate() error {
	if s < Pending || s > Refunded {
		return errs.NewValueIsInvalidError("paymentStatus")
	}
	return nil
}

// String returns the wire-level name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Process transitions Pending or Failed to Processing.
func (s Status) Process() (Status, error) {
	if s != Pending && s != Failed {
		return 0, errs.NewInvalidTransitionError("payment", s.String(), Processing.String())
	}

	return Processing, nil
}

// Pay transitions Pending or Processing to Paid.
func (s Status) Pay() (Status, error) {
	if s != Pending && s != Processing {
		return 0, errs.NewInvalidTransitionError("payment", s.String(), Paid.String())
	}

	return Paid, nil
}

// Fail transitions Pending or Processing to Failed.
func (s Status) Fail() (Status, error) {
	if s != Pending && s != Processing {
		return 0, errs.NewInvalidTransitionError("payment", s.String(), Failed.String())
	}

	return Failed, nil
}

// Refund transitions Paid to the terminal Refunded.
func (s Status) Refund() (Status, error) {
	if s != Paid {
		return 0, errs.NewInvalidTransitionError("payment", s.String(), Refunded.String())
	}

	return Refunded, nil
}
