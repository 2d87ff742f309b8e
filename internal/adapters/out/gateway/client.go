// Package gateway is the client for the external payment provider. Checkout
// opens a hosted payment session here; everything after that arrives through
// the provider's callback endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/ports"

	"github.com/shopspring/decimal"
)

const defaultHTTPTimeout = 10 * time.Second

// Client implements the PaymentGateway port against the provider's HTTP API.
type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

// NewClient creates a gateway client. The callbackURL is where the provider
// reports payment status changes.
func NewClient(baseURL, apiKey, callbackURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  httpClient,
	}
}

type createSessionRequest struct {
	OrderID     string `json:"order_id"`
	Amount      string `json:"amount"`
	CustomerID  string `json:"customer_id"`
	CallbackURL string `json:"callback_url"`
}

type createSessionResponse struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}

// CreateSession opens a hosted payment session for an order. The returned
// external reference is what later callbacks are keyed by.
func (c *Client) CreateSession(
	ctx context.Context,
	orderID kernel.UUID,
	amount decimal.Decimal,
	customerID string,
) (ports.PaymentSession, error) {
	payload, err := json.Marshal(createSessionRequest{
		OrderID:     orderID.String(),
		Amount:      amount.StringFixed(2),
		CustomerID:  customerID,
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return ports.PaymentSession{}, fmt.Errorf("marshal session request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(payload),
	)
	if err != nil {
		return ports.PaymentSession{}, fmt.Errorf("build session request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.PaymentSession{}, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.PaymentSession{}, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var parsed createSessionResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.PaymentSession{}, fmt.Errorf("decode session response failed: %w", err)
	}
	if parsed.Reference == "" {
		return ports.PaymentSession{}, fmt.Errorf("gateway returned a session without a reference")
	}

	return ports.PaymentSession{
		ExternalReference: parsed.Reference,
		RedirectURL:       parsed.RedirectURL,
	}, nil
}
