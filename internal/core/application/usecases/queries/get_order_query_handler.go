package queries

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads the order read model straight from storage with
// raw SQL, joining the payment row the order was born with.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order reads.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the order read.
// Returns an ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var resp GetOrderQueryResponse
	var id uuid.UUID

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.order_number,
			o.customer_id,
			o.status,
			o.total,
			o.address,
			o.city,
			o.scheduled_delivery,
			o.tracking_number,
			o.delivered_at,
			o.created_at,
			p.method,
			p.status,
			p.amount,
			p.receipt_number,
			p.paid_at
		FROM orders o
		JOIN payments p ON p.order_id = o.id
		WHERE o.id = ?
	`, query.OrderID().String()).Row()

	err := row.Scan(
		&id,
		&resp.Number,
		&resp.CustomerID,
		&resp.Status,
		&resp.Total,
		&resp.Address,
		&resp.City,
		&resp.ScheduledDelivery,
		&resp.TrackingNumber,
		&resp.DeliveredAt,
		&resp.CreatedAt,
		&resp.Payment.Method,
		&resp.Payment.Status,
		&resp.Payment.Amount,
		&resp.Payment.ReceiptNumber,
		&resp.Payment.PaidAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.ID = orderID

	lines, err := h.readLines(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.Lines = lines

	return resp, nil
}

func (h GetOrderQueryHandler) readLines(ctx context.Context, orderID kernel.UUID) ([]OrderLineResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			product_id,
			color_id,
			spec_id,
			product_name,
			quantity,
			unit_price,
			is_bundle
		FROM order_line_items
		WHERE order_id = ?
		ORDER BY product_name
	`, orderID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]OrderLineResponse, 0)
	for rows.Next() {
		var line OrderLineResponse
		var productID uuid.UUID

		err = rows.Scan(
			&productID,
			&line.ColorID,
			&line.SpecID,
			&line.ProductName,
			&line.Quantity,
			&line.UnitPrice,
			&line.IsBundle,
		)
		if err != nil {
			return nil, err
		}

		pid, idErr := kernel.UUIDFromBytes(productID[:])
		if idErr != nil {
			return nil, idErr
		}
		line.ProductID = pid
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
