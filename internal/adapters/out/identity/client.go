// Package identity resolves customers against the identity service. Checkout
// resolves the caller's token; notification flows look customers up by id to
// learn their reachable channels.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
)

const defaultHTTPTimeout = 5 * time.Second

// Client implements the IdentityProvider port against the identity service's
// HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an identity client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

type customerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ChatHandle string `json:"chat_handle"`
}

// Resolve exchanges a session token for the customer it belongs to.
func (c *Client) Resolve(ctx context.Context, token string) (ports.Customer, error) {
	if token == "" {
		return ports.Customer{}, errs.NewValueIsRequiredError("token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/me", nil)
	if err != nil {
		return ports.Customer{}, fmt.Errorf("build identity request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.fetch(req, "token")
}

// Lookup retrieves a customer's contact profile by id.
func (c *Client) Lookup(ctx context.Context, customerID string) (ports.Customer, error) {
	if customerID == "" {
		return ports.Customer{}, errs.NewValueIsRequiredError("customerID")
	}

	endpoint := c.baseURL + "/v1/customers/" + url.PathEscape(customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.Customer{}, fmt.Errorf("build identity request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.fetch(req, customerID)
}

func (c *Client) fetch(req *http.Request, subject string) (ports.Customer, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Customer{}, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized:
		return ports.Customer{}, errs.NewObjectNotFoundError("customer", subject)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.Customer{}, fmt.Errorf("identity service returned %d: %s", resp.StatusCode, body)
	}

	var parsed customerResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.Customer{}, fmt.Errorf("decode identity response failed: %w", err)
	}

	return ports.Customer{
		ID:         parsed.ID,
		Name:       parsed.Name,
		Email:      parsed.Email,
		Phone:      parsed.Phone,
		ChatHandle: parsed.ChatHandle,
	}, nil
}
