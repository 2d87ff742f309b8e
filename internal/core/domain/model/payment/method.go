package payment

import (
	"storefront/internal/pkg/errs"
)

// Method is the way an order is paid.
type Method int

const (
	// MethodUnknown represents an invalid or undefined method.
	MethodUnknown Method = iota

	// Online is paid through the external payment gateway; its status is
	// driven exclusively by authenticated gateway callbacks.
	Online

	// CashOnDelivery is collected by the courier. Availability is gated by
	// the delivery-zone geofence, and the payment status is informational
	// only: fulfillment reaching Delivered is the implicit collection signal.
	CashOnDelivery
)

func getMethodStrings() map[Method]string {
	return map[Method]string{
		MethodUnknown:  "UNKNOWN",
		Online:         "ONLINE",
		CashOnDelivery: "CASH_ON_DELIVERY",
	}
}

// MethodFromString parses a wire-level method name.
func MethodFromString(s string) (Method, error) {
	switch s {
	case "ONLINE":
		return Online, nil
	case "CASH_ON_DELIVERY":
		return CashOnDelivery, nil
	default:
		return MethodUnknown, errs.NewValueIsInvalidError("paymentMethod " + s)
	}
}

// Validate checks if the Method is one of the defined values.
func (m Method) Validate() error {
	if m != Online && m != CashOnDelivery {
		return errs.NewValueIsInvalidError("paymentMethod")
	}
	return nil
}

// String returns the wire-level name of the method.
func (m Method) String() string {
	if str, ok := getMethodStrings()[m]; ok {
		return str
	}
	return "UNKNOWN"
}
