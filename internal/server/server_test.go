package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nordlink/dispatch/internal/server"
	"github.com/nordlink/dispatch/internal/store"
	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/carrier/mock"
	"github.com/nordlink/dispatch/pkg/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type catalogCarrier struct {
	*mock.Carrier
}

func (c *catalogCarrier) Services(ctx context.Context) ([]carrier.CatalogEntry, error) {
	return []carrier.CatalogEntry{
		{PartnerCode: "POSTI", ServiceCode: "PO2102", ServiceName: "Express Parcel"},
	}, nil
}

func (c *catalogCarrier) LookupZipcode(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error) {
	return []carrier.ZipcodeInfo{{ZipCode: zip, City: "Helsinki", CountryCode: countryCode}}, nil
}

// The metrics struct registers into the process-global Prometheus
// registry, so one server instance is shared by every subtest.
func TestServer(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	st := store.NewMemory()
	st.Put(&carrier.TransferItem{
		ID:     "1",
		Name:   "WH/OUT/00001",
		Weight: 2.5,
		Destination: &carrier.Party{
			ID:          "dest-1",
			Name:        "Receiver",
			Street:      "Mannerheimintie 1",
			City:        "Helsinki",
			Zip:         "00100",
			CountryCode: "FI",
		},
	})

	registry := carrier.NewRegistry()
	registry.Register(mock.New("test-carrier"))
	registry.Register(&catalogCarrier{Carrier: mock.New("catalog-carrier")})

	sender := &carrier.Party{Name: "Nordlink Oy", CountryCode: "FI"}
	dispatcher := dispatch.New(st, registry, sender, logger)

	srv := server.New(server.Config{Port: 8080}, registry, dispatcher, st, logger)
	handler := srv.Handler()

	do := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("health", func(t *testing.T) {
		rec := do(http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("carriers", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/carriers", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Carriers []string `json:"carriers"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Carriers, "test-carrier")
		assert.Contains(t, resp.Carriers, "catalog-carrier")
	})

	t.Run("services", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/services?carrier=catalog-carrier", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Services []carrier.CatalogEntry `json:"services"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Services, 1)
		assert.Equal(t, "PO2102", resp.Services[0].ServiceCode)
	})

	t.Run("services without catalog", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/services?carrier=test-carrier", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("services unknown carrier", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/services?carrier=nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("zipcodes", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/zipcodes?zip=00100&country=FI", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Zipcodes []carrier.ZipcodeInfo `json:"zipcodes"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Zipcodes, 1)
		assert.Equal(t, "Helsinki", resp.Zipcodes[0].City)
	})

	t.Run("zipcodes missing params", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/zipcodes?zip=00100", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send invalid body", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/shipments", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send missing fields", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/shipments", `{"carrier":"test-carrier"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("send unknown carrier", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/shipments", `{"carrier":"nope","item_ids":["1"]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("send", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/shipments", `{"carrier":"test-carrier","item_ids":["1"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Outcomes []struct {
				ItemID      string `json:"item_id"`
				State       string `json:"state"`
				TrackingRef string `json:"tracking_ref"`
			} `json:"outcomes"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Outcomes, 1)
		assert.Equal(t, "1", resp.Outcomes[0].ItemID)
		assert.Equal(t, "sent", resp.Outcomes[0].State)
		assert.NotEmpty(t, resp.Outcomes[0].TrackingRef)
	})

	t.Run("labels", func(t *testing.T) {
		// The send subtest above attached a label to item 1.
		rec := do(http.MethodGet, "/v1/items/1/labels", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Labels []struct {
				Filename string `json:"filename"`
				Data     []byte `json:"data"`
			} `json:"labels"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Labels, 1)
		assert.True(t, strings.HasSuffix(resp.Labels[0].Filename, ".pdf"))
		assert.NotEmpty(t, resp.Labels[0].Data)
	})

	t.Run("tracking link", func(t *testing.T) {
		rec := do(http.MethodGet, "/v1/items/1/tracking-link?carrier=test-carrier", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			TrackingRef string `json:"tracking_ref"`
			URL         string `json:"url"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.TrackingRef)
		assert.Contains(t, resp.URL, resp.TrackingRef)
	})

	t.Run("cancel", func(t *testing.T) {
		rec := do(http.MethodPost, "/v1/shipments/cancel", `{"carrier":"test-carrier","item_ids":["1"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Cancelled bool `json:"cancelled"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Cancelled)
	})
}
