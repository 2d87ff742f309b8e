// Package services contains domain services that coordinate multiple
// aggregates or external decisions: the geofence resolver gating
// cash-on-delivery availability, and the order factory converting a cart
// snapshot into a paired order and payment.
package services
