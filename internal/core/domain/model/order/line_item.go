package order

import (
	"errors"
	"fmt"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrLineItemIsNotConstructed is returned when a LineItem was not created
// through NewLineItem.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// LineItem is an immutable priced line within an order. The unit price is the
// price lock: it is copied verbatim from the cart entry at checkout and never
// changes afterwards, regardless of later catalog updates. Bundle lines carry
// their own aggregate price; the component list is display-only.
type LineItem struct {
	key              cart.ItemKey
	productName      string
	quantity         int
	unitPrice        decimal.Decimal
	isBundle         bool
	bundleComponents []string

	isConstructed bool
}

// NewLineItem creates a validated order line.
func NewLineItem(
	key cart.ItemKey,
	productName string,
	quantity int,
	unitPrice decimal.Decimal,
	isBundle bool,
	bundleComponents []string,
) (LineItem, error) {
	if err := key.Validate(); err != nil {
		return LineItem{}, err
	}
	if productName == "" {
		return LineItem{}, errs.NewValueIsRequiredError("productName")
	}
	if quantity < 1 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}
	if unitPrice.IsNegative() {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("unitPrice",
			fmt.Errorf("%s is negative", unitPrice))
	}

	return LineItem{
		key:              key,
		productName:      productName,
		quantity:         quantity,
		unitPrice:        unitPrice,
		isBundle:         isBundle,
		bundleComponents: append([]string(nil), bundleComponents...),
		isConstructed:    true,
	}, nil
}

// SnapshotLineItem copies a cart entry into an immutable order line,
// carrying the entry's price snapshot verbatim.
func SnapshotLineItem(item *cart.Item) (LineItem, error) {
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}

	return NewLineItem(
		item.Key(),
		item.ProductName(),
		item.Quantity(),
		item.UnitPrice(),
		item.IsBundle(),
		item.BundleComponents(),
	)
}

// Validate ensures the LineItem was created via NewLineItem.
func (li LineItem) Validate() error {
	if !li.isConstructed {
		return ErrLineItemIsNotConstructed
	}

	return nil
}

// Key returns the composite identity of the purchased configuration.
func (li LineItem) Key() cart.ItemKey {
	return li.key
}

// ProductName returns the display name captured at checkout.
func (li LineItem) ProductName() string {
	return li.productName
}

// Quantity returns the purchased quantity.
func (li LineItem) Quantity() int {
	return li.quantity
}

// UnitPrice returns the locked unit price.
func (li LineItem) UnitPrice() decimal.Decimal {
	return li.unitPrice
}

// IsBundle reports whether the line represents a bundle.
func (li LineItem) IsBundle() bool {
	return li.isBundle
}

// BundleComponents returns the display-only component names of a bundle line.
func (li LineItem) BundleComponents() []string {
	return append([]string(nil), li.bundleComponents...)
}

// Subtotal returns unitPrice * quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.unitPrice.Mul(decimal.NewFromInt(int64(li.quantity)))
}
