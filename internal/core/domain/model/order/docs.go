// Package order implements the immutable order aggregate and its fulfillment
// state machine. An order is a snapshot of cart entries taken at checkout:
// prices are locked at creation and later catalog changes never affect it.
// After creation the aggregate mutates only through its status transitions.
package order
