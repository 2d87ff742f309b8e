package cart

import (
	"errors"
	"time"

	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MaxReminders bounds the abandoned-cart recovery escalation.
var MaxReminders = 3

var (
	// ErrCartIsNotConstructed is returned when a Cart was not created through
	// NewCart or RestoreCart.
	ErrCartIsNotConstructed = errors.New("Cart must be created via NewCart or RestoreCart constructor")

	// ErrEntryNotFound is returned when an operation names a key absent from
	// the targeted partition.
	ErrEntryNotFound = errors.New("cart entry not found")
)

// Cart is the session-held shopping cart aggregate. It keeps two partitions:
// "active" entries that count toward the total, and "saved" entries parked for
// later. Moving an entry between partitions preserves all of its fields; moving
// it back into active merges with any same-key entry added in the meantime.
//
// Invariants:
//   - No two active entries share an ItemKey (same for saved).
//   - Quantities are always >= 1.
//   - Total() sums unitPrice*quantity over active entries only.
//
// The cart has a single logical owner per session; there is no concurrent
// mutation contract beyond last-write-wins against the latest known snapshot.
type Cart struct {
	ownerID        string
	active         []*Item
	saved          []*Item
	lastActivityAt time.Time
	remindersSent  int

	isConstructed bool
}

// NewCart creates an empty cart for the given owner (customer or guest session id).
func NewCart(ownerID string) (*Cart, error) {
	if ownerID == "" {
		return nil, errs.NewValueIsRequiredError("ownerID")
	}

	return &Cart{
		ownerID:        ownerID,
		lastActivityAt: time.Now().UTC(),
		isConstructed:  true,
	}, nil
}

// RestoreCart reconstructs a cart from persistence. Entries must have been
// built via NewItem; the partitions are taken as-is.
func RestoreCart(
	ownerID string,
	active []*Item,
	saved []*Item,
	lastActivityAt time.Time,
	remindersSent int,
) (*Cart, error) {
	if ownerID == "" {
		return nil, errs.NewValueIsRequiredError("ownerID")
	}

	for _, item := range append(append([]*Item(nil), active...), saved...) {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	return &Cart{
		ownerID:        ownerID,
		active:         active,
		saved:          saved,
		lastActivityAt: lastActivityAt,
		remindersSent:  remindersSent,
		isConstructed:  true,
	}, nil
}

// Validate ensures the Cart was created via a constructor.
func (c *Cart) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCartIsNotConstructed
	}

	return nil
}

// OwnerID returns the session owner identifier.
func (c *Cart) OwnerID() string {
	return c.ownerID
}

// ActiveItems returns the active partition. The slice is a copy; the entries are shared.
func (c *Cart) ActiveItems() []*Item {
	return append([]*Item(nil), c.active...)
}

// SavedItems returns the saved-for-later partition. The slice is a copy.
func (c *Cart) SavedItems() []*Item {
	return append([]*Item(nil), c.saved...)
}

// LastActivityAt returns the time of the most recent mutation.
func (c *Cart) LastActivityAt() time.Time {
	return c.lastActivityAt
}

// RemindersSent returns how many abandoned-cart reminders have gone out.
func (c *Cart) RemindersSent() int {
	return c.remindersSent
}

// AddItem puts an entry into the active partition. An existing active entry
// with the same identity key absorbs the quantity instead of duplicating;
// the existing entry's price snapshot is kept.
func (c *Cart) AddItem(item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	if existing := findByKey(c.active, item.Key()); existing != nil {
		existing.merge(item)
		c.touch()
		return nil
	}

	c.active = append(c.active, item)
	c.touch()
	return nil
}

// UpdateQuantity sets the quantity of an active entry. Quantities below 1 are
// rejected; removal is a separate, explicit operation.
func (c *Cart) UpdateQuantity(key ItemKey, quantity int) error {
	item := findByKey(c.active, key)
	if item == nil {
		return ErrEntryNotFound
	}

	if err := item.setQuantity(quantity); err != nil {
		return err
	}

	c.touch()
	return nil
}

// RemoveItem deletes an active entry.
func (c *Cart) RemoveItem(key ItemKey) error {
	items, removed := removeByKey(c.active, key)
	if removed == nil {
		return ErrEntryNotFound
	}

	c.active = items
	c.touch()
	return nil
}

// SaveForLater moves an active entry into the saved partition, preserving all
// of its fields. A saved entry of the same key absorbs the quantity.
func (c *Cart) SaveForLater(key ItemKey) error {
	items, moved := removeByKey(c.active, key)
	if moved == nil {
		return ErrEntryNotFound
	}

	c.active = items
	if existing := findByKey(c.saved, key); existing != nil {
		existing.merge(moved)
	} else {
		c.saved = append(c.saved, moved)
	}

	c.touch()
	return nil
}

// MoveToCart moves a saved entry back into the active partition. If an active
// entry of the same key was added in the meantime, the quantities merge rather
// than duplicating the key.
func (c *Cart) MoveToCart(key ItemKey) error {
	items, moved := removeByKey(c.saved, key)
	if moved == nil {
		return ErrEntryNotFound
	}

	c.saved = items
	if existing := findByKey(c.active, key); existing != nil {
		existing.merge(moved)
	} else {
		c.active = append(c.active, moved)
	}

	c.touch()
	return nil
}

// ClearActive empties the active partition. Saved entries are untouched.
func (c *Cart) ClearActive() {
	c.active = nil
	c.touch()
}

// ClearSaved empties the saved partition.
func (c *Cart) ClearSaved() {
	c.saved = nil
	c.touch()
}

// Total sums unitPrice*quantity over active entries only. Bundle entries
// contribute their own aggregate price, never a sum of their components.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.active {
		total = total.Add(item.Subtotal())
	}

	return total
}

// IsEmpty reports whether the active partition has no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.active) == 0
}

// RecordReminder bumps the reminder counter. Returns the ordinal of the
// reminder just recorded (1-based), or an error once MaxReminders is reached.
func (c *Cart) RecordReminder() (int, error) {
	if c.remindersSent >= MaxReminders {
		return 0, errs.NewValueIsOutOfRangeError("remindersSent", c.remindersSent+1, 1, MaxReminders)
	}

	c.remindersSent++
	return c.remindersSent, nil
}

func (c *Cart) touch() {
	c.lastActivityAt = time.Now().UTC()
}

func findByKey(items []*Item, key ItemKey) *Item {
	for _, item := range items {
		if item.Key() == key {
			return item
		}
	}

	return nil
}

func removeByKey(items []*Item, key ItemKey) ([]*Item, *Item) {
	for i, item := range items {
		if item.Key() == key {
			return append(items[:i:i], items[i+1:]...), item
		}
	}

	return items, nil
}
