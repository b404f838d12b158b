package glsfinland

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nordlink/dispatch/pkg/carrier"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateShipment posts new shipments to the GLS Finland API.
// POST create-shipment
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, shipments []Shipment) ([]ShipmentInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "create-shipment", shipments)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := validateResponse(resp); err != nil {
		return nil, err
	}

	var result []ShipmentInfo
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode create-shipment response: %w", err)
	}

	return result, nil
}

// endpointURL builds the full endpoint URL, normalizing slashes.
func (c *HTTPAPIClient) endpointURL(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return c.baseURL + endpoint
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	url := c.endpointURL(endpoint)

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, carrier.NewTransportError(carrierName, err)
	}
	return resp, nil
}

// validateResponse checks the HTTP status code. 200, 201 and 204 are
// success; anything else becomes a classified APIError.
func validateResponse(resp *http.Response) error {
	status := resp.StatusCode
	if status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent {
		return nil
	}

	var msg string
	switch {
	case status == 400:
		msg = "invalid client request"
	case status == 401 || status == 403:
		msg = "you should check your API key"
	case status == 404:
		msg = "check your API URL or try again later"
	case status >= 500:
		msg = "the API server can not be reached, try again later"
	default:
		msg = resp.Status
	}

	apiErr := carrier.NewAPIError(carrierName, status, msg)
	if body, err := io.ReadAll(resp.Body); err == nil && len(body) > 0 {
		apiErr.Cause = fmt.Errorf("response body: %s", string(body))
	}
	return apiErr
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
