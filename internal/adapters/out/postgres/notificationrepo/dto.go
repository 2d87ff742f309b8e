// Package notificationrepo provides data transfer objects and mapping
// functions for the notification audit trail. Rows are inserted before the
// first send attempt and updated in place, never deleted.
package notificationrepo

import (
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// NotificationDTO represents the database structure for persisting
// notification records.
type NotificationDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID    *uuid.UUID `gorm:"type:uuid;index"`
	EventType  string
	Channel    string
	Recipient  string
	Subject    string
	Body       string
	Status     string `gorm:"index"`
	Attempts   int
	LastError  *string
	ProviderID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for notification records.
func (NotificationDTO) TableName() string {
	return "notifications"
}

// fromDomain converts a notification record to its database representation.
func fromDomain(record *notification.Record) NotificationDTO {
	var orderID *uuid.UUID
	if record.OrderID() != nil {
		raw := record.OrderID().Bytes()
		orderID = &raw
	}

	return NotificationDTO{
		ID:         record.ID().Bytes(),
		OrderID:    orderID,
		EventType:  string(record.EventType()),
		Channel:    string(record.Channel()),
		Recipient:  record.Recipient(),
		Subject:    record.Subject(),
		Body:       record.Body(),
		Status:     string(record.Status()),
		Attempts:   record.Attempts(),
		LastError:  record.LastError(),
		ProviderID: record.ProviderID(),
		CreatedAt:  record.CreatedAt(),
		UpdatedAt:  record.UpdatedAt(),
	}
}

// toDomain converts a database DTO to a notification record via RestoreRecord.
func toDomain(dto NotificationDTO) (*notification.Record, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oid, oidErr := kernel.UUIDFromBytes(dto.OrderID[:])
		if oidErr != nil {
			return nil, oidErr
		}
		orderID = &oid
	}

	return notification.RestoreRecord(
		id,
		orderID,
		notification.EventType(dto.EventType),
		notification.Channel(dto.Channel),
		dto.Recipient,
		dto.Subject,
		dto.Body,
		notification.Status(dto.Status),
		dto.Attempts,
		dto.LastError,
		dto.ProviderID,
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}
