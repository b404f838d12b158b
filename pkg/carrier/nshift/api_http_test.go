package nshift_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/carrier/nshift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPClient(serverURL string) *nshift.HTTPAPIClient {
	return nshift.NewHTTPAPIClient(nshift.HTTPAPIClientConfig{
		BaseURL:  serverURL + "/rs-extapi/v1",
		Username: "USER",
		Password: "PASS",
	})
}

func TestHTTPAPIClient_CreateShipment(t *testing.T) {
	var gotURL, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotAuth = r.Header.Get("Authorization")

		var req nshift.CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]nshift.BookedShipment{{ID: "NS001"}})
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	shipments, err := client.CreateShipment(context.Background(), &nshift.CreateRequest{
		PDFConfig: nshift.DefaultPDFConfig(),
	})

	require.NoError(t, err)
	assert.Equal(t, "/rs-extapi/v1/shipments?returnFile=true", gotURL)
	assert.Equal(t, "Bearer USER-PASS", gotAuth, "writes use the concatenated bearer form")
	require.Len(t, shipments, 1)
	assert.Equal(t, "NS001", shipments[0].ID)
}

func TestHTTPAPIClient_ListPartners_BasicAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]nshift.Partner{{ID: "POSTI"}})
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	partners, err := client.ListPartners(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotAuth, "Basic "), "reads use HTTP basic auth")
	require.Len(t, partners, 1)
}

func TestHTTPAPIClient_CancelShipment(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	err := client.CancelShipment(context.Background(), "NS001")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/rs-extapi/v1/shipments/NS001", gotPath)
}

func TestHTTPAPIClient_ZipcodeLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "00100", r.URL.Query().Get("zip"))
		assert.Equal(t, "FI", r.URL.Query().Get("countryCode"))
		json.NewEncoder(w).Encode([]carrier.ZipcodeInfo{
			{ZipCode: "00100", City: "Helsinki", CountryCode: "FI"},
		})
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	infos, err := client.ZipcodeLookup(context.Background(), "00100", "FI")

	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "Helsinki", infos[0].City)
}

func TestHTTPAPIClient_FieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode([]carrier.FieldError{
			{Field: "receiver.zipcode", Message: "invalid zip code"},
		})
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	_, err := client.CreateShipment(context.Background(), &nshift.CreateRequest{})

	require.Error(t, err)
	var apiErr *carrier.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, carrier.KindBadRequest, apiErr.Kind)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "receiver.zipcode", apiErr.Fields[0].Field)
	assert.Contains(t, err.Error(), "invalid zip code")
}

func TestHTTPAPIClient_CredentialsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newHTTPClient(server.URL)
	_, err := client.ListPartners(context.Background())

	var apiErr *carrier.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, carrier.KindCredentials, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "username and password")
}
