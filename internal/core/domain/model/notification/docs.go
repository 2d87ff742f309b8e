// Package notification implements the delivery-audit side of messaging: one
// Record per channel per triggering event, persisted before the send attempt
// and updated in place afterwards. Records are never deleted on failure; the
// trail is what operators use to spot and explicitly resend failed messages.
package notification
