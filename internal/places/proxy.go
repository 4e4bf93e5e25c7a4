package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ukydev/taller-finder/internal/models"
)

const maxProxyBody = 4 << 20

// ProxyClient fetches raw places through the backend's /api/talleres endpoint,
// the same way the mobile client does.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProxyClient creates a client for the backend at baseURL.
func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &ProxyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type proxyError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NearbySearch implements proximity.PlaceSearcher over the backend proxy.
func (p *ProxyClient) NearbySearch(ctx context.Context, query models.NearbyQuery) ([]models.PlaceResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(query.Location.Lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(query.Location.Lng, 'f', -1, 64))
	if query.Category != nil {
		params.Set("tipo", query.Category.Label())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/talleres?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", models.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr proxyError
		_ = json.Unmarshal(body, &perr)
		if resp.Header.Get("X-Error-Kind") == "missing_credential" {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingCredential, perr.Error)
		}
		if resp.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, perr.Error)
		}
		return nil, fmt.Errorf("%w: status %d: %s %s", models.ErrProviderUnavailable, resp.StatusCode, perr.Error, perr.Details)
	}

	var results []models.PlaceResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrProviderUnavailable, err)
	}
	if results == nil {
		results = []models.PlaceResult{}
	}
	return results, nil
}
