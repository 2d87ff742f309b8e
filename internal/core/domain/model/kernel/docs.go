// Package kernel contains shared value objects used across aggregates:
// identifiers and validated geographic locations. Everything in this package
// is immutable once constructed and safe for concurrent use.
package kernel
