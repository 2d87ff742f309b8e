// Package payment implements the payment aggregate, paired one-to-one with an
// order and linked to it by the order id. It is deliberately a separate,
// separately-versioned entity: a gateway callback racing an operator's
// shipping action touches two aggregates, never one row, and the two machines
// communicate only through published transition events.
package payment
