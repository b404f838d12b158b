package nshift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nordlink/dispatch/pkg/carrier"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateShipment posts a new shipment.
// POST shipments?returnFile=true — returnFile makes the API include the
// label PDFs in the response.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *CreateRequest) ([]BookedShipment, error) {
	endpoint := c.endpointURL("shipments") + "?returnFile=true"

	resp, err := c.doRequest(ctx, http.MethodPost, endpoint, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := validateResponse(resp)
	if err != nil {
		return nil, err
	}

	var result []BookedShipment
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode shipments response: %w", err)
	}
	return result, nil
}

// CancelShipment deletes a shipment.
// DELETE shipments/{id}
func (c *HTTPAPIClient) CancelShipment(ctx context.Context, shipmentID string) error {
	endpoint := c.endpointURL("shipments/" + url.PathEscape(shipmentID))

	resp, err := c.doRequest(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = validateResponse(resp)
	return err
}

// ListPartners fetches all carriers and their services.
// GET meta/lists/partners
func (c *HTTPAPIClient) ListPartners(ctx context.Context) ([]Partner, error) {
	endpoint := c.endpointURL("meta/lists/partners")

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := validateResponse(resp)
	if err != nil {
		return nil, err
	}

	var result []Partner
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode partners response: %w", err)
	}
	return result, nil
}

// ZipcodeLookup queries postal code information.
// GET addresses/zipcodes?zip=&countryCode=
func (c *HTTPAPIClient) ZipcodeLookup(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error) {
	params := url.Values{}
	params.Set("zip", zip)
	params.Set("countryCode", countryCode)
	endpoint := c.endpointURL("addresses/zipcodes") + "?" + params.Encode()

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := validateResponse(resp)
	if err != nil {
		return nil, err
	}

	var result []carrier.ZipcodeInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode zipcodes response: %w", err)
	}
	return result, nil
}

func (c *HTTPAPIClient) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, endpoint)
}

// doRequest performs an HTTP request with authentication. The upstream
// API accepts HTTP Basic on reads while writes use a bearer token
// derived from the same credential pair; both forms are preserved here.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if method == http.MethodGet {
		req.SetBasicAuth(c.username, c.password)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.username+"-"+c.password)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, carrier.NewTransportError(carrierName, err)
	}
	return resp, nil
}

// validateResponse checks the HTTP status code and returns the body.
// 200, 201 and 204 are success; anything else becomes a classified
// APIError with the per-field error list parsed from the body.
func validateResponse(resp *http.Response) ([]byte, error) {
	body, _ := io.ReadAll(resp.Body)

	status := resp.StatusCode
	if status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent {
		return body, nil
	}

	var msg string
	switch {
	case status == 401:
		msg = "you should check your username and password"
	case status == 403:
		msg = "you should check your API permissions"
	case status == 404:
		msg = "check your API URL or try again later"
	case status >= 500:
		msg = "the API server can not be reached, try again later"
	default:
		msg = resp.Status
	}

	apiErr := carrier.NewAPIError(carrierName, status, msg)

	// Error bodies are a list of {field, message} pairs.
	var fields []carrier.FieldError
	if len(body) > 0 && json.Unmarshal(body, &fields) == nil {
		apiErr.WithFields(fields)
	}

	return nil, apiErr
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
