package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ukydev/taller-finder/internal/models"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	placeType      = "car_repair"
)

// Client queries the Google Places Nearby Search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Nearby Search endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			clone := *c.httpClient
			clone.Timeout = d
			c.httpClient = &clone
		}
	}
}

// NewClient creates a Places client. An empty apiKey is accepted here and
// reported by NearbySearch, so the server can still start without one.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

type nearbyResponse struct {
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Results      []models.PlaceResult `json:"results"`
}

// NearbySearch issues one ranked-by-distance query around query.Location.
func (c *Client) NearbySearch(ctx context.Context, query models.NearbyQuery) ([]models.PlaceResult, error) {
	if !c.HasCredential() {
		return nil, fmt.Errorf("%w: Google Maps API key is not configured", models.ErrMissingCredential)
	}

	params := url.Values{}
	params.Set("location", query.Location.String())
	params.Set("rankby", "distance")
	params.Set("type", placeType)
	params.Set("keyword", query.Keyword())
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", models.ErrProviderUnavailable, redact(err.Error(), c.apiKey))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var payload nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrProviderUnavailable, err)
	}

	switch payload.Status {
	case "OK", "ZERO_RESULTS":
	case "":
		return nil, fmt.Errorf("%w: response without status", models.ErrProviderUnavailable)
	default:
		return nil, fmt.Errorf("%w: provider status %s: %s", models.ErrProviderUnavailable, payload.Status, payload.ErrorMessage)
	}

	if payload.Results == nil {
		return []models.PlaceResult{}, nil
	}
	return payload.Results, nil
}

// redact hides the API key in URLs echoed back by transport errors.
func redact(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "REDACTED")
}
