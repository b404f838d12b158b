// Package server exposes the dispatch operations over a JSON HTTP API
// consumed by the host platform.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nordlink/dispatch/internal/telemetry"
	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/dispatch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the dispatch service.
type Server struct {
	port       int
	registry   *carrier.Registry
	dispatcher *dispatch.Dispatcher
	store      dispatch.Store
	logger     *otelzap.Logger
	metrics    *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, dispatcher *dispatch.Dispatcher, store dispatch.Store, logger *otelzap.Logger) *Server {
	return &Server{
		port:       cfg.Port,
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		metrics:    telemetry.NewMetrics(),
	}
}

// Handler builds the HTTP route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/carriers", s.handleCarriers)
	mux.HandleFunc("GET /v1/services", s.handleServices)
	mux.HandleFunc("GET /v1/zipcodes", s.handleZipcodes)
	mux.HandleFunc("POST /v1/shipments", s.handleSend)
	mux.HandleFunc("POST /v1/shipments/cancel", s.handleCancel)
	mux.HandleFunc("GET /v1/items/{id}/labels", s.handleLabels)
	mux.HandleFunc("GET /v1/items/{id}/tracking-link", s.handleTrackingLink)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"carriers": s.registry.Names()})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("carrier")
	if name == "" {
		// No carrier given: refresh every catalog-capable carrier.
		catalogs, errs := s.registry.RefreshCatalogs(r.Context())
		for _, err := range errs {
			s.logger.Warn("Catalog refresh failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, map[string]any{"catalogs": catalogs})
		return
	}

	crr, err := s.registry.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	provider, ok := crr.(carrier.CatalogProvider)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(
			fmt.Sprintf("carrier %s does not expose a service catalog", name)))
		return
	}

	entries, err := provider.Services(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": entries})
}

func (s *Server) handleZipcodes(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zip")
	country := r.URL.Query().Get("country")
	if zip == "" || country == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("zip and country are required"))
		return
	}

	for _, crr := range s.registry.All() {
		if resolver, ok := crr.(carrier.ZipcodeResolver); ok {
			infos, err := resolver.LookupZipcode(r.Context(), zip, country)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"zipcodes": infos})
			return
		}
	}
	writeJSON(w, http.StatusBadRequest, errorBody("no carrier supports zipcode lookup"))
}

type shipmentRequest struct {
	Carrier string   `json:"carrier"`
	ItemIDs []string `json:"item_ids"`
}

type outcomeBody struct {
	ItemID      string `json:"item_id"`
	State       string `json:"state"`
	TrackingRef string `json:"tracking_ref,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req shipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}
	if req.Carrier == "" || len(req.ItemIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("carrier and item_ids are required"))
		return
	}

	start := time.Now()
	outcomes, err := s.dispatcher.Send(r.Context(), req.Carrier, req.ItemIDs)
	s.recordOperation("send", req.Carrier, err, time.Since(start))

	bodies := make([]outcomeBody, 0, len(outcomes))
	for _, o := range outcomes {
		b := outcomeBody{
			ItemID:      o.ItemID,
			State:       string(o.State),
			TrackingRef: o.TrackingRef,
		}
		if o.Err != nil {
			b.Error = o.Err.Error()
		}
		bodies = append(bodies, b)
	}

	status := http.StatusOK
	resp := map[string]any{"outcomes": bodies}
	if err != nil {
		status = errorStatus(err)
		resp["error"] = err.Error()
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req shipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}
	if req.Carrier == "" || len(req.ItemIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("carrier and item_ids are required"))
		return
	}

	start := time.Now()
	err := s.dispatcher.Cancel(r.Context(), req.Carrier, req.ItemIDs)
	s.recordOperation("cancel", req.Carrier, err, time.Since(start))

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": true})
}

type labelBody struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"` // base64 in JSON
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	atts, err := s.store.AttachmentsByItem(r.Context(), itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	labels := make([]labelBody, 0, len(atts))
	for _, att := range atts {
		labels = append(labels, labelBody{Filename: att.Filename, Data: att.Data})
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": labels})
}

func (s *Server) handleTrackingLink(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	name := r.URL.Query().Get("carrier")

	crr, err := s.registry.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := s.store.Item(r.Context(), itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !item.Sent() {
		writeJSON(w, http.StatusBadRequest, errorBody("item has not been sent yet"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tracking_ref": item.TrackingRef,
		"url":          crr.TrackingLink(item.TrackingRef),
	})
}

func (s *Server) recordOperation(operation, carrierName string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
		var apiErr *carrier.APIError
		if errors.As(err, &apiErr) {
			s.metrics.RecordError(carrierName, string(apiErr.Kind))
		}
	}
	s.metrics.RecordOperation(operation, carrierName, status, duration.Seconds())
}

// ============================================================================
// Response helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// errorStatus maps the error taxonomy to HTTP statuses: validation
// problems are the caller's fault, carrier API failures surface as a
// bad gateway, unknown items as not found.
func errorStatus(err error) int {
	switch {
	case carrier.IsValidation(err), errors.Is(err, carrier.ErrCancelNotSupported):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrItemNotFound), errors.Is(err, carrier.ErrCarrierNotFound):
		return http.StatusNotFound
	default:
		var apiErr *carrier.APIError
		if errors.As(err, &apiErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorBody(err.Error()))
}
