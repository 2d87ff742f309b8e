// Package cartrepo provides the durable mirror of session carts. The session
// store is the fast path; this mirror is what survives a cache flush and what
// the abandoned-cart recovery job scans.
package cartrepo

import (
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry partitions. An entry lives either in the active cart or on the
// save-for-later list; the same product identity may appear in both.
const (
	partitionActive = "ACTIVE"
	partitionSaved  = "SAVED"
)

// CartDTO represents the database structure for persisting cart snapshots.
type CartDTO struct {
	OwnerID        string    `gorm:"primaryKey"`
	LastActivityAt time.Time `gorm:"index"`
	RemindersSent  int
	Entries        []EntryDTO `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for cart snapshots.
func (CartDTO) TableName() string {
	return "carts"
}

// EntryDTO represents one cart entry. The primary key is the owner plus the
// composite product identity plus the partition.
type EntryDTO struct {
	OwnerID          string    `gorm:"primaryKey"`
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ColorID          string    `gorm:"primaryKey"`
	SpecID           string    `gorm:"primaryKey"`
	Partition        string    `gorm:"primaryKey"`
	ProductName      string
	Quantity         int
	UnitPrice        decimal.Decimal `gorm:"type:numeric"`
	IsBundle         bool
	BundleComponents []string `gorm:"serializer:json"`
}

// TableName specifies the database table name for cart entries.
func (EntryDTO) TableName() string {
	return "cart_entries"
}

// fromDomain converts a cart aggregate to its database representation.
func fromDomain(aggregate *cart.Cart) CartDTO {
	entries := make([]EntryDTO, 0, len(aggregate.ActiveItems())+len(aggregate.SavedItems()))
	for _, item := range aggregate.ActiveItems() {
		entries = append(entries, entryFromDomain(aggregate.OwnerID(), item, partitionActive))
	}
	for _, item := range aggregate.SavedItems() {
		entries = append(entries, entryFromDomain(aggregate.OwnerID(), item, partitionSaved))
	}

	return CartDTO{
		OwnerID:        aggregate.OwnerID(),
		LastActivityAt: aggregate.LastActivityAt(),
		RemindersSent:  aggregate.RemindersSent(),
		Entries:        entries,
	}
}

func entryFromDomain(ownerID string, item *cart.Item, partition string) EntryDTO {
	return EntryDTO{
		OwnerID:          ownerID,
		ProductID:        item.Key().ProductID.Bytes(),
		ColorID:          item.Key().ColorID,
		SpecID:           item.Key().SpecID,
		Partition:        partition,
		ProductName:      item.ProductName(),
		Quantity:         item.Quantity(),
		UnitPrice:        item.UnitPrice(),
		IsBundle:         item.IsBundle(),
		BundleComponents: item.BundleComponents(),
	}
}

// toDomain converts a database DTO to a cart aggregate via RestoreCart.
func toDomain(dto CartDTO) (*cart.Cart, error) {
	active := make([]*cart.Item, 0, len(dto.Entries))
	saved := make([]*cart.Item, 0)

	for _, entryDTO := range dto.Entries {
		item, err := entryToDomain(entryDTO)
		if err != nil {
			return nil, err
		}

		if entryDTO.Partition == partitionSaved {
			saved = append(saved, item)
		} else {
			active = append(active, item)
		}
	}

	return cart.RestoreCart(dto.OwnerID, active, saved, dto.LastActivityAt, dto.RemindersSent)
}

func entryToDomain(dto EntryDTO) (*cart.Item, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	return cart.NewItem(
		cart.ItemKey{ProductID: productID, ColorID: dto.ColorID, SpecID: dto.SpecID},
		dto.ProductName,
		dto.Quantity,
		dto.UnitPrice,
		dto.IsBundle,
		dto.BundleComponents,
	)
}
