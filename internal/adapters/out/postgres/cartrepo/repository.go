package cartrepo

import (
	"context"
	"errors"
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/retry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM. Carts are keyed by
// the owner rather than a surrogate id, so this repository does not take part
// in aggregate tracking.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GORM cart repository.
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Save replaces the owner's stored snapshot with the cart's current state.
// The cart row is upserted and the entry set rewritten, which makes repeated
// saves of the same snapshot idempotent and resolves concurrent writers
// last-write-wins.
func (r *GormCartRepository) Save(ctx context.Context, aggregate *cart.Cart) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	return retry.Connection(ctx, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			row := CartDTO{
				OwnerID:        dto.OwnerID,
				LastActivityAt: dto.LastActivityAt,
				RemindersSent:  dto.RemindersSent,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_id"}},
				UpdateAll: true,
			}).Create(&row).Error
			if err != nil {
				return err
			}

			err = tx.Where("owner_id = ?", dto.OwnerID).Delete(&EntryDTO{}).Error
			if err != nil {
				return err
			}

			if len(dto.Entries) == 0 {
				return nil
			}
			return tx.Create(&dto.Entries).Error
		})
	})
}

// Get retrieves the owner's cart together with both entry partitions.
func (r *GormCartRepository) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	if ownerID == "" {
		return nil, errs.NewValueIsRequiredError("ownerID")
	}

	var dto CartDTO
	err := retry.Connection(ctx, func() error {
		return r.db.WithContext(ctx).Preload("Entries").First(&dto, "owner_id = ?", ownerID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cart", ownerID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListAbandoned retrieves carts with active entries whose last activity
// predates the cutoff and which still qualify for a recovery reminder.
func (r *GormCartRepository) ListAbandoned(
	ctx context.Context,
	cutoff time.Time,
	maxReminders int,
) ([]*cart.Cart, error) {
	var dtos []CartDTO
	err := retry.Connection(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Entries").
			Where("last_activity_at < ?", cutoff).
			Where("reminders_sent < ?", maxReminders).
			Where(
				"EXISTS (SELECT 1 FROM cart_entries e WHERE e.owner_id = carts.owner_id AND e.partition = ?)",
				partitionActive,
			).
			Order("last_activity_at").
			Find(&dtos).Error
	})
	if err != nil {
		return nil, err
	}

	carts := make([]*cart.Cart, 0, len(dtos))
	for _, dto := range dtos {
		c, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		carts = append(carts, c)
	}

	return carts, nil
}
