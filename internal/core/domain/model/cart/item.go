package cart

import (
	"errors"
	"fmt"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrItemIsNotConstructed is returned when an Item was not created through NewItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// ItemKey is the composite identity of a purchasable configuration:
// (product, color variant, spec variant). Two cart entries with the same key
// represent the same configuration and are merged rather than duplicated.
// Color and spec are optional; an empty string means "no variant".
type ItemKey struct {
	ProductID kernel.UUID
	ColorID   string
	SpecID    string
}

// String returns a stable textual form of the key, used for upsert keys and logs.
func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.ProductID, k.ColorID, k.SpecID)
}

// Validate checks that the key carries a constructed product identifier.
func (k ItemKey) Validate() error {
	return k.ProductID.Validate()
}

// Item is a single priced cart entry. The unit price is a snapshot taken when
// the entry was added; bundle entries carry their own aggregate price, with
// the component list kept for display only.
type Item struct {
	key              ItemKey
	productName      string
	quantity         int
	unitPrice        decimal.Decimal
	isBundle         bool
	bundleComponents []string

	isConstructed bool
}

// NewItem creates a validated cart entry.
// Quantity must be at least 1 and the unit price must not be negative.
func NewItem(
	key ItemKey,
	productName string,
	quantity int,
	unitPrice decimal.Decimal,
	isBundle bool,
	bundleComponents []string,
) (*Item, error) {
	item := &Item{
		isConstructed: true,
	}

	if err := errors.Join(
		item.setKey(key),
		item.setProductName(productName),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return nil, err
	}

	item.isBundle = isBundle
	item.bundleComponents = append([]string(nil), bundleComponents...)
	return item, nil
}

// Validate ensures the Item was created via NewItem.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}

	return nil
}

// Key returns the composite identity of the entry.
func (i *Item) Key() ItemKey {
	return i.key
}

// ProductName returns the display name captured when the entry was added.
func (i *Item) ProductName() string {
	return i.productName
}

// Quantity returns the current quantity.
func (i *Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the snapshotted unit price.
func (i *Item) UnitPrice() decimal.Decimal {
	return i.unitPrice
}

// IsBundle reports whether the entry represents a bundle.
func (i *Item) IsBundle() bool {
	return i.isBundle
}

// BundleComponents returns the display-only component names of a bundle entry.
func (i *Item) BundleComponents() []string {
	return append([]string(nil), i.bundleComponents...)
}

// Subtotal returns unitPrice * quantity.
func (i *Item) Subtotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// merge folds another entry of the same key into this one by adding quantities.
// The receiving entry's price snapshot wins; the duplicate's is discarded.
func (i *Item) merge(other *Item) {
	i.quantity += other.quantity
}

func (i *Item) setKey(key ItemKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	i.key = key
	return nil
}

func (i *Item) setProductName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("productName")
	}

	i.productName = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}

	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("unitPrice",
			fmt.Errorf("%s is negative", unitPrice))
	}

	i.unitPrice = unitPrice
	return nil
}
