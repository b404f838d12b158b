package glsfinland

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/nordlink/dispatch/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors bool

	CreateShipmentCalls int

	OnCreateShipment func(ctx context.Context, shipments []Shipment) ([]ShipmentInfo, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateShipment returns one mock shipment info per posted shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, shipments []Shipment) ([]ShipmentInfo, error) {
	m.CreateShipmentCalls++

	if m.SimulateErrors {
		return nil, carrier.NewAPIError(carrierName, 500, "simulated API error")
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, shipments)
	}

	label := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock GLS label"))
	result := make([]ShipmentInfo, len(shipments))
	for i, s := range shipments {
		units := make([]TransportUnitInfo, len(s.TransportUnits))
		for j := range s.TransportUnits {
			units[j] = TransportUnitInfo{
				TrackingNumber: "GLS" + uuid.New().String()[:8],
			}
		}
		result[i] = ShipmentInfo{
			TransportUnits: units,
			LabelPDF:       label,
		}
	}
	return result, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
