// Package http exposes the storefront over REST. Handlers stay thin: bind,
// build a command or query, hand off, map the error.
package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/core/application/usecases/cartops"
	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/cart"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// sessionHeader identifies guest carts when no customer token is present.
const sessionHeader = "X-Session-ID"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	cartService *cartops.Service
	geofence    *services.GeofenceResolver
	identity    ports.IdentityProvider

	// Command handlers
	checkoutHandler            commands.CheckoutCommandHandler
	paymentCallbackHandler     commands.PaymentCallbackCommandHandler
	updateOrderStatusHandler   commands.UpdateOrderStatusCommandHandler
	shipOrderHandler           commands.ShipOrderCommandHandler
	refundOrderHandler         commands.RefundOrderCommandHandler
	confirmDeliveryHandler     commands.ConfirmDeliveryCommandHandler
	resendNotificationHandler  commands.ResendNotificationCommandHandler
	confirmNotificationHandler commands.ConfirmNotificationCommandHandler

	// Query handlers
	getOrderHandler         queries.GetOrderQueryHandler
	getNotificationsHandler queries.GetNotificationsQueryHandler
}

// NewServer creates an HTTP server with the required collaborators and handlers.
func NewServer(
	cartService *cartops.Service,
	geofence *services.GeofenceResolver,
	identity ports.IdentityProvider,
	checkoutHandler commands.CheckoutCommandHandler,
	paymentCallbackHandler commands.PaymentCallbackCommandHandler,
	updateOrderStatusHandler commands.UpdateOrderStatusCommandHandler,
	shipOrderHandler commands.ShipOrderCommandHandler,
	refundOrderHandler commands.RefundOrderCommandHandler,
	confirmDeliveryHandler commands.ConfirmDeliveryCommandHandler,
	resendNotificationHandler commands.ResendNotificationCommandHandler,
	confirmNotificationHandler commands.ConfirmNotificationCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getNotificationsHandler queries.GetNotificationsQueryHandler,
) *Server {
	return &Server{
		cartService:                cartService,
		geofence:                   geofence,
		identity:                   identity,
		checkoutHandler:            checkoutHandler,
		paymentCallbackHandler:     paymentCallbackHandler,
		updateOrderStatusHandler:   updateOrderStatusHandler,
		shipOrderHandler:           shipOrderHandler,
		refundOrderHandler:         refundOrderHandler,
		confirmDeliveryHandler:     confirmDeliveryHandler,
		resendNotificationHandler:  resendNotificationHandler,
		confirmNotificationHandler: confirmNotificationHandler,
		getOrderHandler:            getOrderHandler,
		getNotificationsHandler:    getNotificationsHandler,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")

	api.GET("/cart", s.GetCart)
	api.DELETE("/cart", s.ClearCart)
	api.POST("/cart/items", s.AddCartItem)
	api.PATCH("/cart/items", s.UpdateCartItemQuantity)
	api.DELETE("/cart/items", s.RemoveCartItem)
	api.POST("/cart/items/save", s.SaveCartItemForLater)
	api.POST("/cart/items/activate", s.MoveCartItemToCart)

	api.GET("/geofence", s.ProbeGeofence)

	api.POST("/checkout", s.Checkout)
	api.POST("/payments/callback", s.PaymentCallback)

	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/confirm", s.ConfirmOrder)
	api.POST("/orders/:id/process", s.ProcessOrder)
	api.POST("/orders/:id/ship", s.ShipOrder)
	api.POST("/orders/:id/deliver", s.DeliverOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/orders/:id/refund", s.RefundOrder)
	api.POST("/orders/:id/confirm-delivery", s.ConfirmDelivery)

	api.GET("/notifications", s.GetNotifications)
	api.POST("/notifications/:id/resend", s.ResendNotification)
	api.POST("/notifications/:id/confirm", s.ConfirmNotification)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// GetCart handles GET /api/v1/cart.
func (s *Server) GetCart(ctx echo.Context) error {
	ownerID, err := s.ownerID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	c, err := s.cartService.Get(ctx.Request().Context(), ownerID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cartToResponse(c))
}

// AddCartItem handles POST /api/v1/cart/items.
func (s *Server) AddCartItem(ctx echo.Context) error {
	ownerID, err := s.ownerID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var req AddItemRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	key, err := parseItemKey(req.ItemKeyRequest)
	if err != nil {
		return respondError(ctx, err)
	}

	item, err := cart.NewItem(key, req.ProductName, req.Quantity, req.UnitPrice, req.IsBundle, req.BundleComponents)
	if err != nil {
		return respondError(ctx, err)
	}

	c, err := s.cartService.AddItem(ctx.Request().Context(), ownerID, item)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cartToResponse(c))
}

// UpdateCartItemQuantity handles PATCH /api/v1/cart/items.
func (s *Server) UpdateCartItemQuantity(ctx echo.Context) error {
	ownerID, err := s.ownerID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var req UpdateQuantityRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	key, err := parseItemKey(req.ItemKeyRequest)
	if err != nil {
		return respondError(ctx, err)
	}

	c, err := s.cartService.UpdateQuantity(ctx.Request().Context(), ownerID, key, req.Quantity)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cartToResponse(c))
}

// RemoveCartItem handles DELETE /api/v1/cart/items. The entry is addressed
// by query parameters.
func (s *Server) RemoveCartItem(ctx echo.Context) error {
	return s.mutateByKey(ctx, s.cartService.RemoveItem)
}

// SaveCartItemForLater handles POST /api/v1/cart/items/save.
func (s *Server) SaveCartItemForLater(ctx echo.Context) error {
	return s.mutateByKey(ctx, s.cartService.SaveForLater)
}

// MoveCartItemToCart handles POST /api/v1/cart/items/activate.
func (s *Server) MoveCartItemToCart(ctx echo.Context) error {
	return s.mutateByKey(ctx, s.cartService.MoveToCart)
}

// ClearCart handles DELETE /api/v1/cart. Only the active partition is
// cleared; saved-for-later entries stay.
func (s *Server) ClearCart(ctx echo.Context) error {
	ownerID, err := s.ownerID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	c, err := s.cartService.Clear(ctx.Request().Context(), ownerID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cartToResponse(c))
}

// ProbeGeofence handles GET /api/v1/geofence - answers whether a coordinate
// is inside the cash-on-delivery zone.
func (s *Server) ProbeGeofence(ctx echo.Context) error {
	latitude, err := strconv.ParseFloat(ctx.QueryParam("lat"), 64)
	if err != nil {
		return badRequest(ctx, "lat must be a number")
	}
	longitude, err := strconv.ParseFloat(ctx.QueryParam("lng"), 64)
	if err != nil {
		return badRequest(ctx, "lng must be a number")
	}

	decision := s.geofence.Resolve(ctx.Request().Context(), latitude, longitude)

	return ctx.JSON(http.StatusOK, GeofenceResponse{
		WithinZone: decision.WithinZone,
		Source:     decision.Source,
	})
}

// Checkout handles POST /api/v1/checkout - converts the caller's cart into
// an order with its paired payment.
func (s *Server) Checkout(ctx echo.Context) error {
	customer, err := s.caller(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	var req CheckoutRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	location, err := kernel.NewLocation(req.Latitude, req.Longitude, req.Address, req.City)
	if err != nil {
		return respondError(ctx, err)
	}

	method, err := payment.MethodFromString(req.PaymentMethod)
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewCheckoutCommand(customer, location, req.ScheduledDelivery, method)
	if err != nil {
		return respondError(ctx, err)
	}

	result, err := s.checkoutHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CheckoutResponse{
		OrderID:     result.OrderID.String(),
		OrderNumber: result.OrderNumber,
		Total:       result.Total,
		RedirectURL: result.RedirectURL,
	})
}

// PaymentCallback handles POST /api/v1/payments/callback - the gateway's
// status report, keyed by the session's external reference.
func (s *Server) PaymentCallback(ctx echo.Context) error {
	var req PaymentCallbackRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	reported, err := payment.StatusFromString(req.Status)
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewPaymentCallbackCommand(req.Reference, reported, req.Amount, req.ReceiptNumber)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.paymentCallbackHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return respondError(ctx, err)
	}

	resp, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderToResponse(resp))
}

// ConfirmOrder handles POST /api/v1/orders/:id/confirm.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	return s.updateStatus(ctx, order.Confirmed)
}

// ProcessOrder handles POST /api/v1/orders/:id/process.
func (s *Server) ProcessOrder(ctx echo.Context) error {
	return s.updateStatus(ctx, order.Processing)
}

// DeliverOrder handles POST /api/v1/orders/:id/deliver.
func (s *Server) DeliverOrder(ctx echo.Context) error {
	return s.updateStatus(ctx, order.Delivered)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	return s.updateStatus(ctx, order.Cancelled)
}

// ShipOrder handles POST /api/v1/orders/:id/ship.
func (s *Server) ShipOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	var req ShipOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewShipOrderCommand(orderID, req.TrackingNumber)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.shipOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// RefundOrder handles POST /api/v1/orders/:id/refund.
func (s *Server) RefundOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewRefundOrderCommand(orderID)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.refundOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// ConfirmDelivery handles POST /api/v1/orders/:id/confirm-delivery - the
// customer acknowledging receipt.
func (s *Server) ConfirmDelivery(ctx echo.Context) error {
	customer, err := s.caller(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewConfirmDeliveryCommand(orderID, customer.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.confirmDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// GetNotifications handles GET /api/v1/notifications - the operator audit
// trail, optionally filtered by order_id and status.
func (s *Server) GetNotifications(ctx echo.Context) error {
	var orderID *kernel.UUID
	if raw := ctx.QueryParam("order_id"); raw != "" {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return respondError(ctx, err)
		}
		orderID = &id
	}

	var status *notification.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		parsed := notification.Status(strings.ToUpper(raw))
		status = &parsed
	}

	query, err := queries.NewGetNotificationsQuery(orderID, status)
	if err != nil {
		return respondError(ctx, err)
	}

	records, err := s.getNotificationsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]NotificationResponse, 0, len(records))
	for _, record := range records {
		response = append(response, NotificationResponse{
			ID:         record.ID.String(),
			OrderID:    uuidPtrToString(record.OrderID),
			EventType:  record.EventType,
			Channel:    record.Channel,
			Recipient:  record.Recipient,
			Status:     record.Status,
			Attempts:   record.Attempts,
			LastError:  record.LastError,
			ProviderID: record.ProviderID,
			CreatedAt:  record.CreatedAt,
			UpdatedAt:  record.UpdatedAt,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// ResendNotification handles POST /api/v1/notifications/:id/resend.
func (s *Server) ResendNotification(ctx echo.Context) error {
	recordID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewResendNotificationCommand(recordID)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.resendNotificationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusAccepted)
}

// ConfirmNotification handles POST /api/v1/notifications/:id/confirm - the
// provider's asynchronous delivery confirmation.
func (s *Server) ConfirmNotification(ctx echo.Context) error {
	recordID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewConfirmNotificationCommand(recordID)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.confirmNotificationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// updateStatus runs one operator transition against an order.
func (s *Server) updateStatus(ctx echo.Context, target order.Status) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, target)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.updateOrderStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusOK)
}

// mutateByKey runs a cart operation addressed by the composite product
// identity in query parameters.
func (s *Server) mutateByKey(
	ctx echo.Context,
	op func(ctx context.Context, ownerID string, key cart.ItemKey) (*cart.Cart, error),
) error {
	ownerID, err := s.ownerID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	key, err := parseItemKey(ItemKeyRequest{
		ProductID: ctx.QueryParam("product_id"),
		ColorID:   ctx.QueryParam("color_id"),
		SpecID:    ctx.QueryParam("spec_id"),
	})
	if err != nil {
		return respondError(ctx, err)
	}

	c, err := op(ctx.Request().Context(), ownerID, key)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, cartToResponse(c))
}

// caller resolves the authenticated customer from the bearer token.
func (s *Server) caller(ctx echo.Context) (ports.Customer, error) {
	token := bearerToken(ctx)
	if token == "" {
		return ports.Customer{}, echo.ErrUnauthorized
	}

	return s.identity.Resolve(ctx.Request().Context(), token)
}

// ownerID identifies whose cart a request addresses: the authenticated
// customer when a token is present, the guest session otherwise.
func (s *Server) ownerID(ctx echo.Context) (string, error) {
	if bearerToken(ctx) != "" {
		customer, err := s.caller(ctx)
		if err != nil {
			return "", err
		}
		return customer.ID, nil
	}

	if sessionID := ctx.Request().Header.Get(sessionHeader); sessionID != "" {
		return sessionID, nil
	}

	return "", echo.ErrUnauthorized
}

func bearerToken(ctx echo.Context) string {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}

func parseItemKey(req ItemKeyRequest) (cart.ItemKey, error) {
	productID, err := kernel.UUIDFromString(req.ProductID)
	if err != nil {
		return cart.ItemKey{}, err
	}

	key := cart.ItemKey{ProductID: productID, ColorID: req.ColorID, SpecID: req.SpecID}
	if err = key.Validate(); err != nil {
		return cart.ItemKey{}, err
	}

	return key, nil
}

func orderToResponse(resp queries.GetOrderQueryResponse) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(resp.Lines))
	for _, line := range resp.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID:   line.ProductID.String(),
			ColorID:     line.ColorID,
			SpecID:      line.SpecID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			IsBundle:    line.IsBundle,
		})
	}

	return OrderResponse{
		ID:                resp.ID.String(),
		Number:            resp.Number,
		CustomerID:        resp.CustomerID,
		Status:            resp.Status,
		Total:             resp.Total,
		Address:           resp.Address,
		City:              resp.City,
		ScheduledDelivery: resp.ScheduledDelivery,
		TrackingNumber:    resp.TrackingNumber,
		DeliveredAt:       resp.DeliveredAt,
		CreatedAt:         resp.CreatedAt,
		Lines:             lines,
		Payment: OrderPaymentResponse{
			Method:        resp.Payment.Method,
			Status:        resp.Payment.Status,
			Amount:        resp.Payment.Amount,
			ReceiptNumber: resp.Payment.ReceiptNumber,
			PaidAt:        resp.Payment.PaidAt,
		},
	}
}
