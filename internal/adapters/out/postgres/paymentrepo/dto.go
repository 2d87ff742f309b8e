// Package paymentrepo provides data transfer objects and mapping functions
// for payment persistence. Every order owns exactly one payment row; gateway
// callbacks address it by the external reference.
package paymentrepo

import (
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDTO represents the database structure for persisting payments.
type PaymentDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Method            string
	Status            string          `gorm:"index"`
	Amount            decimal.Decimal `gorm:"type:numeric"`
	ExternalReference *string         `gorm:"uniqueIndex"`
	ReceiptNumber     *string
	PaidAt            *time.Time
	CreatedAt         time.Time
}

// TableName specifies the database table name for payment entities.
func (PaymentDTO) TableName() string {
	return "payments"
}

// fromDomain converts a payment aggregate to its database representation.
func fromDomain(aggregate *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                aggregate.ID().Bytes(),
		OrderID:           aggregate.OrderID().Bytes(),
		Method:            aggregate.Method().String(),
		Status:            aggregate.Status().String(),
		Amount:            aggregate.Amount(),
		ExternalReference: aggregate.ExternalReference(),
		ReceiptNumber:     aggregate.ReceiptNumber(),
		PaidAt:            aggregate.PaidAt(),
		CreatedAt:         aggregate.CreatedAt(),
	}
}

// toDomain converts a database DTO to a payment aggregate via RestorePayment.
func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	method, err := payment.MethodFromString(dto.Method)
	if err != nil {
		return nil, err
	}

	status, err := payment.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return payment.RestorePayment(
		id,
		orderID,
		method,
		status,
		dto.Amount,
		dto.ExternalReference,
		dto.ReceiptNumber,
		dto.PaidAt,
		dto.CreatedAt,
	)
}
