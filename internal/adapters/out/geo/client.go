// Package geo talks to the external reverse-geocoding service. The client is
// wrapped in a circuit breaker so a flapping provider fails fast and the
// geofence resolver drops to its local bounding-box answer.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/core/domain/services"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultHTTPTimeout = 5 * time.Second

	breakerName        = "geocoder"
	breakerMaxRequests = 3
	breakerInterval    = 60 * time.Second
	breakerTimeout     = 30 * time.Second
	breakerMinRequests = 5
	breakerFailureRate = 0.6
)

// Client implements the Geocoder port against an HTTP reverse-geocoding API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[services.GeocodeResult]
}

// NewClient creates a geocoder client for the given base URL.
// A nil httpClient gets a default one with a bounded timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	breaker := gobreaker.NewCircuitBreaker[services.GeocodeResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && failureRate >= breakerFailureRate
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// reverseGeocodeResponse is the provider's wire format.
type reverseGeocodeResponse struct {
	Address    string `json:"address"`
	WithinZone bool   `json:"within_zone"`
}

// ReverseGeocode asks the provider whether a coordinate falls inside the
// serviceable zone. An open breaker surfaces as an error, which the caller
// treats the same as any other remote failure.
func (c *Client) ReverseGeocode(
	ctx context.Context,
	latitude, longitude float64,
) (services.GeocodeResult, error) {
	return c.breaker.Execute(func() (services.GeocodeResult, error) {
		return c.doReverseGeocode(ctx, latitude, longitude)
	})
}

func (c *Client) doReverseGeocode(
	ctx context.Context,
	latitude, longitude float64,
) (services.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/reverse?lat=%s&lng=%s",
		c.baseURL,
		url.QueryEscape(fmt.Sprintf("%f", latitude)),
		url.QueryEscape(fmt.Sprintf("%f", longitude)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.GeocodeResult{}, fmt.Errorf("build geocode request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.GeocodeResult{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.GeocodeResult{}, fmt.Errorf("geocode request returned %d: %s", resp.StatusCode, body)
	}

	var payload reverseGeocodeResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return services.GeocodeResult{}, fmt.Errorf("decode geocode response failed: %w", err)
	}

	return services.GeocodeResult{
		Address:    payload.Address,
		WithinZone: payload.WithinZone,
	}, nil
}
