// Package transport implements the outbound message senders behind the
// notification dispatcher. Each sender wraps one provider's HTTP API and
// reports the provider's message id back for the audit trail.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/core/ports"
)

const defaultHTTPTimeout = 10 * time.Second

// providerResponse is the shape all three providers answer with.
type providerResponse struct {
	ID string `json:"id"`
}

// EmailSender delivers through the transactional email provider.
type EmailSender struct {
	client providerClient
}

// NewEmailSender creates an email sender for the given provider endpoint.
func NewEmailSender(baseURL, apiKey string, httpClient *http.Client) *EmailSender {
	return &EmailSender{client: newProviderClient(baseURL, apiKey, httpClient)}
}

// Send submits one email.
func (s *EmailSender) Send(ctx context.Context, recipient, subject, body string) (ports.SendResult, error) {
	return s.client.post(ctx, "/v1/emails", map[string]string{
		"to":      recipient,
		"subject": subject,
		"body":    body,
	})
}

// SMSSender delivers through the SMS gateway. The subject is dropped; SMS
// bodies already come pre-shortened from the template layer.
type SMSSender struct {
	client providerClient
}

// NewSMSSender creates an SMS sender for the given gateway endpoint.
func NewSMSSender(baseURL, apiKey string, httpClient *http.Client) *SMSSender {
	return &SMSSender{client: newProviderClient(baseURL, apiKey, httpClient)}
}

// Send submits one SMS.
func (s *SMSSender) Send(ctx context.Context, recipient, _, body string) (ports.SendResult, error) {
	return s.client.post(ctx, "/v1/sms", map[string]string{
		"to":   recipient,
		"text": body,
	})
}

// ChatSender delivers through the chat-app provider. Known limitation: chat
// messages reuse the SMS-shaped body rather than a chat-native template.
type ChatSender struct {
	client providerClient
}

// NewChatSender creates a chat sender for the given provider endpoint.
func NewChatSender(baseURL, apiKey string, httpClient *http.Client) *ChatSender {
	return &ChatSender{client: newProviderClient(baseURL, apiKey, httpClient)}
}

// Send submits one chat message addressed by the recipient's handle.
func (s *ChatSender) Send(ctx context.Context, recipient, _, body string) (ports.SendResult, error) {
	return s.client.post(ctx, "/v1/messages", map[string]string{
		"handle": recipient,
		"text":   body,
	})
}

// providerClient is the shared HTTP plumbing for the three providers.
type providerClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newProviderClient(baseURL, apiKey string, httpClient *http.Client) providerClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return providerClient{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

func (c providerClient) post(ctx context.Context, path string, payload map[string]string) (ports.SendResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("marshal message failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("build send request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ports.SendResult{}, fmt.Errorf("provider returned %d: %s", resp.StatusCode, body)
	}

	var parsed providerResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.SendResult{}, fmt.Errorf("decode provider response failed: %w", err)
	}

	return ports.SendResult{ProviderID: parsed.ID}, nil
}
