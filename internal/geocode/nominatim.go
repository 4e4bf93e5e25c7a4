package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ukydev/taller-finder/internal/models"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "taller-finder/1.0"
)

// Client resolves free-text addresses with OSM Nominatim.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a geocoding client. An empty baseURL selects the public
// Nominatim instance.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
	}
}

// Nominatim returns coordinates as strings, some mirrors as numbers.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("coordinate must be a string or number")
	}
	*c = coordinate(value)
	return nil
}

type match struct {
	Lat         coordinate `json:"lat"`
	Lon         coordinate `json:"lon"`
	DisplayName string     `json:"display_name"`
}

// Geocode returns the first match for address.
func (c *Client) Geocode(ctx context.Context, address string) (models.GeoPoint, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: build request: %v", models.ErrGeocodingFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.GeoPoint{}, ctx.Err()
		}
		return models.GeoPoint{}, fmt.Errorf("%w: %v", models.ErrGeocodingFailed, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return models.GeoPoint{}, fmt.Errorf("%w: status %d", models.ErrGeocodingFailed, res.StatusCode)
	}

	var payload []match
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", models.ErrGeocodingFailed, err)
	}
	if len(payload) == 0 {
		return models.GeoPoint{}, fmt.Errorf("%w: %q", models.ErrAddressNotFound, address)
	}

	point := models.GeoPoint{Lat: float64(payload[0].Lat), Lng: float64(payload[0].Lon)}
	if err := point.Validate(); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", models.ErrGeocodingFailed, err)
	}
	return point, nil
}
