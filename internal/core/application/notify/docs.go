// Package notify contains the notification dispatcher and the abandoned-cart
// recovery service. The dispatcher fans one domain event out to the channels a
// customer can be reached on, persisting an audit record per channel before
// the transport is called and updating it with the outcome. Transport failures
// are captured on the record and never propagate to the triggering operation.
package notify
