package glsfinland_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/carrier/glsfinland"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPClient(serverURL string) *glsfinland.HTTPAPIClient {
	return glsfinland.NewHTTPAPIClient(glsfinland.HTTPAPIClientConfig{
		BaseURL: serverURL + "/api/shipping/",
		APIKey:  "test-key",
	})
}

func TestHTTPAPIClient_CreateShipment_Success(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")

		var shipments []glsfinland.Shipment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&shipments))
		require.Len(t, shipments, 1)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]glsfinland.ShipmentInfo{{
			TransportUnits: []glsfinland.TransportUnitInfo{{TrackingNumber: "GLS999"}},
		}})
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	infos, err := client.CreateShipment(context.Background(), []glsfinland.Shipment{{}})

	require.NoError(t, err)
	assert.Equal(t, "/api/shipping/create-shipment/", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, infos, 1)
	assert.Equal(t, "GLS999", infos[0].TransportUnits[0].TrackingNumber)
}

func TestHTTPAPIClient_CreateShipment_ErrorStatuses(t *testing.T) {
	tests := []struct {
		status  int
		kind    carrier.ErrorKind
		message string
	}{
		{400, carrier.KindBadRequest, "invalid client request"},
		{401, carrier.KindCredentials, "check your API key"},
		{404, carrier.KindEndpoint, "check your API URL"},
		{500, carrier.KindTransient, "can not be reached"},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		client := newHTTPClient(server.URL)
		_, err := client.CreateShipment(context.Background(), []glsfinland.Shipment{{}})
		server.Close()

		require.Error(t, err, "status %d", tt.status)
		var apiErr *carrier.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.kind, apiErr.Kind)
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, tt.message)
	}
}

func TestHTTPAPIClient_CreateShipment_TransportError(t *testing.T) {
	// Point the client at a closed server.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newHTTPClient(server.URL)
	_, err := client.CreateShipment(context.Background(), []glsfinland.Shipment{{}})

	require.Error(t, err)
	assert.True(t, carrier.IsRetryable(err), "transport failures are retryable")
}
