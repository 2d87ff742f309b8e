// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between the domain model and its relational shape.
package orderrepo

import (
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The locked line items live in their own table keyed by the order id plus
// the composite product identity.
type OrderDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderNumber       string    `gorm:"uniqueIndex"`
	CustomerID        string    `gorm:"index"`
	Total             decimal.Decimal `gorm:"type:numeric"`
	Status            string          `gorm:"index"`
	Address           string
	City              string
	Latitude          float64
	Longitude         float64
	ScheduledDelivery *time.Time
	TrackingNumber    *string
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	Lines             []LineItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO represents one locked order line. The primary key is the order
// id plus the composite product identity, mirroring the cart's entry key.
type LineItemDTO struct {
	OrderID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ColorID          string    `gorm:"primaryKey"`
	SpecID           string    `gorm:"primaryKey"`
	ProductName      string
	Quantity         int
	UnitPrice        decimal.Decimal `gorm:"type:numeric"`
	IsBundle         bool
	BundleComponents []string `gorm:"serializer:json"`
}

// TableName specifies the database table name for order line items.
func (LineItemDTO) TableName() string {
	return "order_line_items"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	location := aggregate.DeliveryLocation()

	lines := make([]LineItemDTO, 0, len(aggregate.LineItems()))
	for _, li := range aggregate.LineItems() {
		lines = append(lines, LineItemDTO{
			OrderID:          aggregate.ID().Bytes(),
			ProductID:        li.Key().ProductID.Bytes(),
			ColorID:          li.Key().ColorID,
			SpecID:           li.Key().SpecID,
			ProductName:      li.ProductName(),
			Quantity:         li.Quantity(),
			UnitPrice:        li.UnitPrice(),
			IsBundle:         li.IsBundle(),
			BundleComponents: li.BundleComponents(),
		})
	}

	return OrderDTO{
		ID:                aggregate.ID().Bytes(),
		OrderNumber:       aggregate.Number(),
		CustomerID:        aggregate.CustomerID(),
		Total:             aggregate.Total(),
		Status:            aggregate.Status().String(),
		Address:           location.Address(),
		City:              location.City(),
		Latitude:          location.Latitude(),
		Longitude:         location.Longitude(),
		ScheduledDelivery: aggregate.ScheduledDelivery(),
		TrackingNumber:    aggregate.TrackingNumber(),
		DeliveredAt:       aggregate.DeliveredAt(),
		CreatedAt:         aggregate.CreatedAt(),
		Lines:             lines,
	}
}

// toDomain converts a database DTO to an order aggregate via RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewLocation(dto.Latitude, dto.Longitude, dto.Address, dto.City)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineItem, 0, len(dto.Lines))
	for _, lineDTO := range dto.Lines {
		productID, lineErr := kernel.UUIDFromBytes(lineDTO.ProductID[:])
		if lineErr != nil {
			return nil, lineErr
		}

		li, lineErr := order.NewLineItem(
			cart.ItemKey{ProductID: productID, ColorID: lineDTO.ColorID, SpecID: lineDTO.SpecID},
			lineDTO.ProductName,
			lineDTO.Quantity,
			lineDTO.UnitPrice,
			lineDTO.IsBundle,
			lineDTO.BundleComponents,
		)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, li)
	}

	return order.RestoreOrder(
		id,
		dto.OrderNumber,
		dto.CustomerID,
		lines,
		dto.Total,
		status,
		location,
		dto.ScheduledDelivery,
		dto.TrackingNumber,
		dto.DeliveredAt,
		dto.CreatedAt,
	)
}
