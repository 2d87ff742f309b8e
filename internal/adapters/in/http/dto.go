package http

import (
	"time"

	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Error is the uniform error body every endpoint returns on failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ItemKeyRequest addresses one cart entry by its composite product identity.
type ItemKeyRequest struct {
	ProductID string `json:"product_id"`
	ColorID   string `json:"color_id"`
	SpecID    string `json:"spec_id"`
}

// AddItemRequest is the body for adding an entry to the cart.
type AddItemRequest struct {
	ItemKeyRequest
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	IsBundle         bool            `json:"is_bundle"`
	BundleComponents []string        `json:"bundle_components,omitempty"`
}

// UpdateQuantityRequest is the body for changing an entry's quantity.
type UpdateQuantityRequest struct {
	ItemKeyRequest
	Quantity int `json:"quantity"`
}

// CartItemResponse is one entry of a cart response.
type CartItemResponse struct {
	ProductID        string          `json:"product_id"`
	ColorID          string          `json:"color_id"`
	SpecID           string          `json:"spec_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	IsBundle         bool            `json:"is_bundle"`
	BundleComponents []string        `json:"bundle_components,omitempty"`
}

// CartResponse is the full session cart, both partitions.
type CartResponse struct {
	OwnerID string             `json:"owner_id"`
	Items   []CartItemResponse `json:"items"`
	Saved   []CartItemResponse `json:"saved"`
	Total   decimal.Decimal    `json:"total"`
}

func cartToResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		OwnerID: c.OwnerID(),
		Items:   itemsToResponse(c.ActiveItems()),
		Saved:   itemsToResponse(c.SavedItems()),
		Total:   c.Total(),
	}
}

func itemsToResponse(items []*cart.Item) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, CartItemResponse{
			ProductID:        item.Key().ProductID.String(),
			ColorID:          item.Key().ColorID,
			SpecID:           item.Key().SpecID,
			ProductName:      item.ProductName(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice(),
			Subtotal:         item.Subtotal(),
			IsBundle:         item.IsBundle(),
			BundleComponents: item.BundleComponents(),
		})
	}
	return out
}

// GeofenceResponse answers the serviceability probe.
type GeofenceResponse struct {
	WithinZone bool   `json:"within_zone"`
	Source     string `json:"source"`
}

// CheckoutRequest is the body for converting the cart into an order.
type CheckoutRequest struct {
	Address           string     `json:"address"`
	City              string     `json:"city"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	ScheduledDelivery *time.Time `json:"scheduled_delivery,omitempty"`
	PaymentMethod     string     `json:"payment_method"`
}

// CheckoutResponse reports the created order and, for online payments, where
// to send the customer to pay.
type CheckoutResponse struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Total       decimal.Decimal `json:"total"`
	RedirectURL string          `json:"redirect_url,omitempty"`
}

// PaymentCallbackRequest is what the payment gateway posts on status changes.
type PaymentCallbackRequest struct {
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
}

// ShipOrderRequest carries the tracking number recorded at shipment.
type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// OrderLineResponse is one locked line of an order response.
type OrderLineResponse struct {
	ProductID   string          `json:"product_id"`
	ColorID     string          `json:"color_id"`
	SpecID      string          `json:"spec_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsBundle    bool            `json:"is_bundle"`
}

// OrderPaymentResponse is the payment block of an order response.
type OrderPaymentResponse struct {
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber *string         `json:"receipt_number,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// OrderResponse is the order read model.
type OrderResponse struct {
	ID                string               `json:"id"`
	Number            string               `json:"number"`
	CustomerID        string               `json:"customer_id"`
	Status            string               `json:"status"`
	Total             decimal.Decimal      `json:"total"`
	Address           string               `json:"address"`
	City              string               `json:"city"`
	ScheduledDelivery *time.Time           `json:"scheduled_delivery,omitempty"`
	TrackingNumber    *string              `json:"tracking_number,omitempty"`
	DeliveredAt       *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	Lines             []OrderLineResponse  `json:"lines"`
	Payment           OrderPaymentResponse `json:"payment"`
}

// NotificationResponse is one row of the notification audit trail.
type NotificationResponse struct {
	ID         string     `json:"id"`
	OrderID    *string    `json:"order_id,omitempty"`
	EventType  string     `json:"event_type"`
	Channel    string     `json:"channel"`
	Recipient  string     `json:"recipient"`
	Status     string     `json:"status"`
	Attempts   int        `json:"attempts"`
	LastError  *string    `json:"last_error,omitempty"`
	ProviderID *string    `json:"provider_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func uuidPtrToString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
