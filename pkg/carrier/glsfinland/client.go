// Package glsfinland provides integration with the GLS Finland shipping API.
package glsfinland

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

const carrierName = "gls_finland"

// The API publishes a single host; test and production are told apart by
// the mode flag in the payload. Both URLs stay configurable regardless.
const (
	DefaultBaseURL     = "https://api.gls.fi/api/shipping/"
	DefaultTestBaseURL = "https://api.gls.fi/api/shipping/"
)

const (
	apiVersion   = 2.1
	sourceSystem = "Nordlink Dispatch"
	trackingURL  = "https://gls-group.com/FI/en/parcel-tracking"
)

// GLS product codes.
const (
	ProductEuroBusinessParcel   = "10000"
	ProductEuroBusinessFreight  = "10013"
	ProductGlobalBusinessParcel = "10015"
	ProductGlobalExpressParcel  = "10010"
)

// GLS additional service codes.
const (
	ServiceAddOnInsurance = "11028"
	ServiceShopReturn     = "11047"
	ServiceShopDelivery   = "11055"
	ServiceFlexDelivery   = "11069"
	ServiceEmailPreAdvice = "90000"
)

// Maximum field lengths accepted by the GLS address schema.
const (
	maxNameLen   = 40
	maxStreetLen = 40
	maxCityLen   = 40
	maxZipLen    = 10
	maxEmailLen  = 255
	maxPhoneLen  = 40
	maxVATLen    = 17
)

// Config holds GLS Finland configuration.
type Config struct {
	APIKey         string
	CustomerNumber string
	ProductCode    string
	ServiceCode    string
	Production     bool
	BaseURL        string
	TestBaseURL    string
	UseMock        bool // When true, uses mock API client
}

func (c Config) baseURL() string {
	if c.Production {
		return carrier.Coalesce(c.BaseURL, DefaultBaseURL)
	}
	return carrier.Coalesce(c.TestBaseURL, DefaultTestBaseURL)
}

func (c Config) mode() string {
	if c.Production {
		return "production"
	}
	return "test"
}

// Client is the GLS Finland carrier client.
// It implements the carrier.Carrier interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new GLS Finland client.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.baseURL(),
			APIKey:  cfg.APIKey,
			Timeout: 30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new GLS Finland client with a custom API
// client. This is useful for injecting mock clients in tests.
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

// Send books a shipment group with GLS Finland.
func (c *Client) Send(ctx context.Context, group *carrier.Group) (*carrier.Result, error) {
	c.logger.Info("Sending GLS Finland shipment",
		zap.String("correlation_id", group.CorrelationID),
		zap.String("reference", group.Reference),
		zap.Int("parcel_count", len(group.Parcels)),
	)

	shipment, err := c.buildShipment(group)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.CreateShipment(ctx, []Shipment{shipment})
	if err != nil {
		c.logger.Error("GLS Finland API error", zap.Error(err))
		return nil, err
	}
	if len(resp) == 0 {
		return nil, carrier.ErrEmptyResponse
	}

	return c.shipmentInfoToResult(group, &resp[0])
}

// Cancel is permanently unsupported by the GLS Finland API. It fails
// fast without any network call; shipments are cancelled in the GLS
// web portal.
func (c *Client) Cancel(ctx context.Context, trackingRef string) error {
	return fmt.Errorf("%w: cancel shipment %s from the GLS website portal",
		carrier.ErrCancelNotSupported, trackingRef)
}

// TrackingLink returns the GLS parcel tracking page. The upstream page
// takes no tracking number parameter.
func (c *Client) TrackingLink(trackingRef string) string {
	return trackingURL
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

// buildShipment maps a shipment group to the GLS wire payload.
func (c *Client) buildShipment(group *carrier.Group) (Shipment, error) {
	addr, err := mapAddress(group.Destination)
	if err != nil {
		return Shipment{}, err
	}

	shipment := Shipment{
		API: APIBlock{
			UUID:         group.CorrelationID,
			Version:      apiVersion,
			Mode:         c.config.mode(),
			SourceSystem: sourceSystem,
		},
		Order: OrderBlock{
			CustomerNumber: c.config.CustomerNumber,
			LabelType:      "label",
		},
		DeliveryAddr: addr,
		Details: ShipmentBlock{
			Contents:    group.Contents,
			Product:     c.config.ProductCode,
			Incoterm:    group.Incoterm,
			Info:        group.Info,
			ShipperRef:  group.Reference,
			TotalWeight: group.TotalWeight,
		},
		TransportUnits: mapTransportUnits(group.Parcels),
	}

	if svc, ok := c.resolveService(group); ok {
		shipment.Services = []Service{svc}
	}

	return shipment, nil
}

// resolveService returns the configured additional service. A service
// needing supplementary data omits itself when the data cannot be
// resolved: email pre-advice without a recipient email is dropped with
// a warning instead of failing the whole shipment.
func (c *Client) resolveService(group *carrier.Group) (Service, bool) {
	code := c.config.ServiceCode
	if code == "" {
		return Service{}, false
	}

	if code == ServiceEmailPreAdvice {
		email := group.Destination.PreAdviceEmail()
		if email == "" {
			c.logger.Warn("Omitting email pre-advice service, recipient has no email",
				zap.String("correlation_id", group.CorrelationID),
			)
			return Service{}, false
		}
		return Service{Service: code, Info: carrier.Truncate(email, maxEmailLen)}, true
	}

	return Service{Service: code}, true
}

// mapAddress converts a party record to a GLS delivery address, applying
// the per-field length limits and contact fallback chain. Street is the
// only field GLS refuses to do without.
func mapAddress(party *carrier.Party) (Address, error) {
	if party.Street == "" {
		return Address{}, carrier.NewValidationError(
			"party %s has no street address, GLS requires one", party.ID)
	}

	commercial := party.CommercialEntity()

	addrType := "private"
	if commercial.IsCompany {
		addrType = "business"
	}

	addr := Address{
		AddrType: addrType,
		// Name is required; there should never be a situation where
		// both names are missing.
		Name1:   carrier.Truncate(carrier.Coalesce(party.CompanyName, commercial.CompanyName), maxNameLen),
		Street1: carrier.Truncate(party.Street, maxStreetLen),
	}

	if contactName := carrier.Coalesce(party.Name, commercial.Name); contactName != "" {
		addr.ContactName = carrier.Truncate(contactName, maxNameLen)
	}
	if party.CountryCode != "" {
		addr.Country = party.CountryCode
	}
	if email := party.ContactEmail(); email != "" {
		addr.Email = carrier.Truncate(email, maxEmailLen)
	}
	if mobile := party.ContactMobile(); mobile != "" {
		addr.Mobile = carrier.Truncate(mobile, maxPhoneLen)
	}
	if party.City != "" {
		addr.PostAddr = carrier.Truncate(party.City, maxCityLen)
	}
	if party.Zip != "" {
		addr.ZipCode = carrier.Truncate(party.Zip, maxZipLen)
	}
	if party.Street2 != "" {
		addr.Street2 = carrier.Truncate(party.Street2, maxStreetLen)
	}
	if phone := party.ContactPhone(); phone != "" {
		addr.Telephone = carrier.Truncate(phone, maxPhoneLen)
	}
	if vat := party.TaxID(); vat != "" {
		addr.VATID = carrier.Truncate(vat, maxVATLen)
	}

	return addr, nil
}

func mapTransportUnits(parcels []carrier.Parcel) []TransportUnit {
	units := make([]TransportUnit, len(parcels))
	for i, p := range parcels {
		units[i] = TransportUnit{
			Contents: p.Contents,
			Weight:   p.Weight,
			Height:   p.Height,
			Length:   p.Length,
			Width:    p.Width,
		}
	}
	return units
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

// shipmentInfoToResult extracts tracking numbers and the label document.
// More than one transport unit in the response is accepted but logged:
// the first tracking number becomes the tracking reference, every number
// is kept in the tracking code list.
func (c *Client) shipmentInfoToResult(group *carrier.Group, info *ShipmentInfo) (*carrier.Result, error) {
	codes := make([]string, 0, len(info.TransportUnits))
	for _, unit := range info.TransportUnits {
		if unit.TrackingNumber != "" {
			codes = append(codes, unit.TrackingNumber)
		}
	}
	if len(codes) == 0 {
		return nil, carrier.NewAPIError(carrierName, 0, "response contains no tracking number")
	}
	if len(codes) > 1 {
		c.logger.Warn("Multiple transport units received, keeping the first tracking number",
			zap.String("correlation_id", group.CorrelationID),
			zap.Strings("tracking_numbers", codes),
		)
	}
	tracking := codes[0]

	result := &carrier.Result{
		TrackingRef:   tracking,
		TrackingCodes: codes,
		Price:         decimal.Zero,
	}

	if info.LabelPDF != "" {
		data, err := base64.StdEncoding.DecodeString(info.LabelPDF)
		if err != nil {
			return nil, fmt.Errorf("failed to decode label document: %w", err)
		}
		// Filename is usually "WH-OUT-00042_GLS123.pdf"
		filename := fmt.Sprintf("%s_%s.pdf", group.Items[0].Name, tracking)
		result.Labels = []carrier.Label{{Filename: filename, Data: data}}
	}

	return result, nil
}

// Ensure Client implements the carrier interface
var _ carrier.Carrier = (*Client)(nil)
