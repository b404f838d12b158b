package nshift

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/nordlink/dispatch/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors bool

	CreateShipmentCalls int
	CancelShipmentCalls int
	ListPartnersCalls   int
	ZipcodeLookupCalls  int

	OnCreateShipment func(ctx context.Context, req *CreateRequest) ([]BookedShipment, error)
	OnCancelShipment func(ctx context.Context, shipmentID string) error
	OnListPartners   func(ctx context.Context) ([]Partner, error)
	OnZipcodeLookup  func(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateShipment returns one mock booked shipment with a label per parcel.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *CreateRequest) ([]BookedShipment, error) {
	m.CreateShipmentCalls++

	if m.SimulateErrors {
		return nil, carrier.NewAPIError(carrierName, 500, "simulated API error")
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	shipmentID := "NS" + uuid.New().String()[:8]
	parcels := make([]BookedParcel, len(req.Shipment.Parcels))
	for i := range parcels {
		parcels[i] = BookedParcel{ParcelNo: fmt.Sprintf("%s-%d", shipmentID, i+1)}
	}

	return []BookedShipment{
		{
			ID:         shipmentID,
			ShipmentNo: shipmentID,
			Parcels:    parcels,
			PDFs: []PDF{
				{
					ID:          "1",
					Description: "Label",
					Data:        base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock nShift label")),
				},
			},
		},
	}, nil
}

// CancelShipment cancels a mock shipment.
func (m *MockAPIClient) CancelShipment(ctx context.Context, shipmentID string) error {
	m.CancelShipmentCalls++

	if m.SimulateErrors {
		return carrier.NewAPIError(carrierName, 500, "simulated API error")
	}

	if m.OnCancelShipment != nil {
		return m.OnCancelShipment(ctx, shipmentID)
	}
	return nil
}

// ListPartners returns a small static partner catalog.
func (m *MockAPIClient) ListPartners(ctx context.Context) ([]Partner, error) {
	m.ListPartnersCalls++

	if m.SimulateErrors {
		return nil, carrier.NewAPIError(carrierName, 500, "simulated API error")
	}

	if m.OnListPartners != nil {
		return m.OnListPartners(ctx)
	}

	return []Partner{
		{
			ID:          "POSTI",
			Description: "Posti",
			Services: []PartnerService{
				{ID: "PO2102", Description: "Express Parcel"},
				{ID: "PO2103", Description: "Home Parcel"},
			},
		},
		{
			ID:          "MHM",
			Description: "Matkahuolto",
			Services: []PartnerService{
				{ID: "MH80", Description: "Bussipaketti"},
			},
		},
	}, nil
}

// ZipcodeLookup returns mock postal code information.
func (m *MockAPIClient) ZipcodeLookup(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error) {
	m.ZipcodeLookupCalls++

	if m.SimulateErrors {
		return nil, carrier.NewAPIError(carrierName, 500, "simulated API error")
	}

	if m.OnZipcodeLookup != nil {
		return m.OnZipcodeLookup(ctx, zip, countryCode)
	}

	return []carrier.ZipcodeInfo{
		{ZipCode: zip, City: "Helsinki", CountryCode: countryCode},
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
