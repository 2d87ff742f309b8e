package notify

import (
	"fmt"

	"storefront/internal/core/domain/model/notification"
)

// Param keys recognized by the message templates. Missing params render as
// empty strings; templates are written to degrade gracefully.
const (
	ParamOrderNumber    = "order_number"
	ParamTotal          = "total"
	ParamTrackingNumber = "tracking_number"
	ParamItems          = "items"
	ParamReminder       = "reminder"
	ParamIncentive      = "incentive"
)

// renderMessage builds the subject and body for one channel of one event.
// Email carries a subject and a fuller body; SMS and chat get a single short
// line. The chat channel reuses the SMS rendering, a known limitation of the
// current provider integration.
func renderMessage(e Event, channel notification.Channel) (subject, body string) {
	name := e.Recipient.Name
	if name == "" {
		name = "customer"
	}

	long := channel == notification.ChannelEmail

	switch e.Type {
	case notification.OrderConfirmation:
		subject = fmt.Sprintf("Order %s confirmed", e.Params[ParamOrderNumber])
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nThank you for your order %s. We have received it and will let you know as soon as it ships.\nOrder total: %s.\n",
				name, e.Params[ParamOrderNumber], e.Params[ParamTotal])
		} else {
			body = fmt.Sprintf("Order %s received, total %s. We'll text you when it ships.",
				e.Params[ParamOrderNumber], e.Params[ParamTotal])
		}

	case notification.PaymentReceived:
		subject = fmt.Sprintf("Payment received for order %s", e.Params[ParamOrderNumber])
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nWe have received your payment of %s for order %s. Your order is being prepared.\n",
				name, e.Params[ParamTotal], e.Params[ParamOrderNumber])
		} else {
			body = fmt.Sprintf("Payment of %s received for order %s.",
				e.Params[ParamTotal], e.Params[ParamOrderNumber])
		}

	case notification.PaymentFailed:
		subject = fmt.Sprintf("Payment failed for order %s", e.Params[ParamOrderNumber])
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nYour payment for order %s did not go through. No money was taken. You can retry the payment from your order page.\n",
				name, e.Params[ParamOrderNumber])
		} else {
			body = fmt.Sprintf("Payment for order %s failed. Please retry from your order page.",
				e.Params[ParamOrderNumber])
		}

	case notification.OrderShipped:
		subject = fmt.Sprintf("Order %s is on its way", e.Params[ParamOrderNumber])
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nOrder %s has shipped. Track it with number %s.\n",
				name, e.Params[ParamOrderNumber], e.Params[ParamTrackingNumber])
		} else {
			body = fmt.Sprintf("Order %s shipped. Tracking: %s.",
				e.Params[ParamOrderNumber], e.Params[ParamTrackingNumber])
		}

	case notification.OrderDelivered:
		subject = fmt.Sprintf("Order %s delivered", e.Params[ParamOrderNumber])
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nOrder %s has been delivered. Once you confirm receipt you can review the products you bought.\n",
				name, e.Params[ParamOrderNumber])
		} else {
			body = fmt.Sprintf("Order %s delivered. Enjoy!", e.Params[ParamOrderNumber])
		}

	case notification.CartReminder:
		subject = "You left something in your cart"
		incentive := e.Params[ParamIncentive]
		if long {
			body = fmt.Sprintf(
				"Hi %s,\n\nYou still have %s item(s) waiting in your cart, worth %s.",
				name, e.Params[ParamItems], e.Params[ParamTotal])
			if incentive != "" {
				body += fmt.Sprintf(" Complete your purchase now and use code %s at checkout.", incentive)
			}
			body += "\n"
		} else {
			body = fmt.Sprintf("Your cart (%s item(s), %s) is still waiting.",
				e.Params[ParamItems], e.Params[ParamTotal])
			if incentive != "" {
				body += fmt.Sprintf(" Use code %s for a discount.", incentive)
			}
		}

	default:
		subject = "Notification"
		body = fmt.Sprintf("Update on your order %s.", e.Params[ParamOrderNumber])
	}

	if channel != notification.ChannelEmail {
		subject = ""
	}

	return subject, body
}
