// Package nshift provides integration with the nShift (Unifaun) shipping API.
package nshift

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "nshift"

// The API publishes a single host for test and production; both URLs
// stay configurable regardless.
const (
	DefaultBaseURL     = "https://api.unifaun.com/rs-extapi/v1"
	DefaultTestBaseURL = "https://api.unifaun.com/rs-extapi/v1"
)

// Config holds nShift configuration.
type Config struct {
	Username       string // 16 uppercase characters
	Password       string // 24 uppercase characters
	CustomerID     string
	PartnerCode    string // carrier agreement id, e.g. "POSTI"
	CustomerNumber string // customer number for the carrier agreement
	ServiceCode    string // selected service, e.g. "PO2102"
	Production     bool
	BaseURL        string
	TestBaseURL    string
	// Region and Language select the Unifaun tracking frontend locale.
	Region   string
	Language string
	UseMock  bool // When true, uses mock API client
}

func (c Config) baseURL() string {
	if c.Production {
		return carrier.Coalesce(c.BaseURL, DefaultBaseURL)
	}
	return carrier.Coalesce(c.TestBaseURL, DefaultTestBaseURL)
}

// Client is the nShift carrier client.
// It implements the carrier.Carrier interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new nShift client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.baseURL(),
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new nShift client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Send books a shipment group with nShift.
func (c *Client) Send(ctx context.Context, group *carrier.Group) (*carrier.Result, error) {
	c.logger.Info("Sending nShift shipment",
		zap.String("correlation_id", group.CorrelationID),
		zap.String("reference", group.Reference),
		zap.Int("parcel_count", len(group.Parcels)),
	)

	req := c.buildRequest(group)

	resp, err := c.apiClient.CreateShipment(ctx, req)
	if err != nil {
		c.logger.Error("nShift API error", zap.Error(err))
		return nil, err
	}
	if len(resp) == 0 {
		return nil, carrier.ErrEmptyResponse
	}
	if len(resp) > 1 {
		c.logger.Warn("Multiple shipments received, keeping the first shipment id",
			zap.String("correlation_id", group.CorrelationID),
			zap.Int("shipment_count", len(resp)),
		)
	}

	return c.bookedShipmentsToResult(resp)
}

// Cancel deletes a shipment.
func (c *Client) Cancel(ctx context.Context, trackingRef string) error {
	c.logger.Info("Cancelling nShift shipment", zap.String("tracking_ref", trackingRef))
	return c.apiClient.CancelShipment(ctx, trackingRef)
}

// TrackingLink returns the Unifaun track & trace URL for a shipment.
func (c *Client) TrackingLink(trackingRef string) string {
	region := carrier.Coalesce(c.config.Region, "fi")
	language := carrier.Coalesce(c.config.Language, "fi")
	return fmt.Sprintf(
		"https://www.unifaunonline.com/ext.uo.%s.%s.track?apiKey=%s&order=%s",
		region, language, c.config.Username, trackingRef,
	)
}

// Services fetches the carrier/service catalog from the partner list.
func (c *Client) Services(ctx context.Context) ([]carrier.CatalogEntry, error) {
	partners, err := c.apiClient.ListPartners(ctx)
	if err != nil {
		c.logger.Error("nShift API error", zap.Error(err))
		return nil, err
	}

	var entries []carrier.CatalogEntry
	for _, partner := range partners {
		for _, svc := range partner.Services {
			entries = append(entries, carrier.CatalogEntry{
				PartnerCode: partner.ID,
				CarrierName: partner.Description,
				ServiceCode: svc.ID,
				ServiceName: svc.Description,
			})
		}
	}
	return entries, nil
}

// LookupZipcode queries postal code information.
func (c *Client) LookupZipcode(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error) {
	return c.apiClient.ZipcodeLookup(ctx, zip, countryCode)
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

func (c *Client) buildRequest(group *carrier.Group) *CreateRequest {
	return &CreateRequest{
		Shipment: Shipment{
			OrderNo:         group.Reference,
			SenderReference: group.SenderRef,
			Sender:          mapAddress(group.Sender),
			SenderPartners: []SenderPartner{
				{
					ID:             c.config.PartnerCode,
					CustomerNumber: c.config.CustomerNumber,
				},
			},
			Receiver:          mapAddress(group.Destination),
			Service:           ServiceRef{ID: c.config.ServiceCode},
			Parcels:           mapParcels(group.Parcels),
			ReceiverReference: group.CustomerRef,
		},
		PDFConfig: DefaultPDFConfig(),
	}
}

// mapAddress converts a party record to an nShift address. Every field
// is optional upstream, so missing values map to empty strings; the
// phone falls back to the mobile number.
func mapAddress(party *carrier.Party) Address {
	if party == nil {
		return Address{}
	}
	return Address{
		Name:     carrier.Coalesce(party.Name, party.CompanyName),
		Address1: party.Street,
		Address2: party.Street2,
		ZipCode:  party.Zip,
		City:     party.City,
		Country:  party.CountryCode,
		Phone:    carrier.Coalesce(party.Phone, party.Mobile),
		Email:    party.Email,
	}
}

func mapParcels(parcels []carrier.Parcel) []Parcel {
	result := make([]Parcel, len(parcels))
	for i, p := range parcels {
		copies := p.Copies
		if copies == 0 {
			copies = 1
		}
		result[i] = Parcel{
			Copies:         copies,
			Weight:         p.Weight,
			Contents:       p.Contents,
			ValuePerParcel: true,
			Volume:         p.Volume,
		}
	}
	return result
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

// bookedShipmentsToResult extracts tracking references, parcel numbers
// and label documents. The first shipment id becomes the tracking
// reference; parcel numbers of every booked shipment are collected as
// tracking codes.
func (c *Client) bookedShipmentsToResult(shipments []BookedShipment) (*carrier.Result, error) {
	result := &carrier.Result{
		TrackingRef: shipments[0].ID,
		Price:       decimal.Zero,
	}

	for _, shipment := range shipments {
		for _, parcel := range shipment.Parcels {
			if parcel.ParcelNo == "" {
				continue
			}
			c.logger.Info("Adding parcel to shipment",
				zap.String("shipment_id", shipment.ID),
				zap.String("parcel_no", parcel.ParcelNo),
			)
			result.TrackingCodes = append(result.TrackingCodes, parcel.ParcelNo)
		}

		for _, pdf := range shipment.PDFs {
			data, err := base64.StdEncoding.DecodeString(pdf.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode label document: %w", err)
			}
			// Filename is usually "Label_12345678.pdf"
			filename := fmt.Sprintf("%s_%s.pdf",
				carrier.Coalesce(pdf.Description, "File"),
				carrier.Coalesce(pdf.ID, "unknown"),
			)
			result.Labels = append(result.Labels, carrier.Label{
				Filename: filename,
				Data:     data,
			})
		}
	}

	return result, nil
}

// Ensure Client implements the carrier interfaces
var (
	_ carrier.Carrier         = (*Client)(nil)
	_ carrier.CatalogProvider = (*Client)(nil)
	_ carrier.ZipcodeResolver = (*Client)(nil)
)
