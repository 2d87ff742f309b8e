package queries

import (
	"context"

	"storefront/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetNotificationsQueryHandler reads the notification audit trail with raw
// SQL, newest first.
type GetNotificationsQueryHandler struct {
	db *gorm.DB
}

// NewGetNotificationsQueryHandler creates a handler for audit trail reads.
func NewGetNotificationsQueryHandler(db *gorm.DB) GetNotificationsQueryHandler {
	return GetNotificationsQueryHandler{db: db}
}

// Handle executes the audit trail read with the query's optional filters.
func (h GetNotificationsQueryHandler) Handle(
	ctx context.Context,
	query GetNotificationsQuery,
) ([]GetNotificationsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			order_id,
			event_type,
			channel,
			recipient,
			status,
			attempts,
			last_error,
			provider_id,
			created_at,
			updated_at
		FROM notifications
		WHERE 1=1
	`
	args := make([]any, 0, 2)

	if query.OrderID() != nil {
		sql += " AND order_id = ?"
		args = append(args, query.OrderID().String())
	}
	if query.Status() != nil {
		sql += " AND status = ?"
		args = append(args, string(*query.Status()))
	}
	sql += " ORDER BY created_at DESC"

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]GetNotificationsQueryResponse, 0)
	for rows.Next() {
		var record GetNotificationsQueryResponse
		var id uuid.UUID
		var orderID *uuid.UUID

		err = rows.Scan(
			&id,
			&orderID,
			&record.EventType,
			&record.Channel,
			&record.Recipient,
			&record.Status,
			&record.Attempts,
			&record.LastError,
			&record.ProviderID,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		recordID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		record.ID = recordID

		if orderID != nil {
			oid, oidErr := kernel.UUIDFromBytes(orderID[:])
			if oidErr != nil {
				return nil, oidErr
			}
			record.OrderID = &oid
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
