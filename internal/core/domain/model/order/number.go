package order

import (
	"fmt"
	"math/rand/v2"
	"time"

	"storefront/internal/pkg/errs"
)

// numberSuffixSpace is the size of the random suffix space for order numbers.
const numberSuffixSpace = 1_000_000

// GenerateNumber produces a human-readable order number of the form
// "ORD-20260827-042517". The date prefix keeps numbers sortable for
// operators; true uniqueness is enforced by the unique index on the
// orders table, so a rare suffix collision surfaces as a create error.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.UTC().Format("20060102"), rand.IntN(numberSuffixSpace)) //nolint:gosec // not security sensitive
}

// ValidateNumber checks that an order number is present.
// The exact shape is not re-validated when restoring from persistence.
func ValidateNumber(number string) error {
	if number == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}

	return nil
}
