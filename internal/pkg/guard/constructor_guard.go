// Package guard provides a lightweight marker that distinguishes values created
// through their constructor from zero values. Embedding a ConstructorGuard in a
// value object makes "was this built via NewXxx?" a checkable property instead
// of a convention.
package guard

import "errors"

// ErrNotConstructed is the default error returned when validating a zero-value guard.
var ErrNotConstructed = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as having been produced by a constructor.
// The zero value is "not constructed" and fails Validate.
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard in the constructed state.
// Constructors store it in the value they build.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a constructed guard. For a zero-value guard it
// returns notConstructedErr, or ErrNotConstructed when notConstructedErr is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.constructed {
		return nil
	}

	if notConstructedErr == nil {
		return ErrNotConstructed
	}

	return notConstructedErr
}
