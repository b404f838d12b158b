package glsfinland

import (
	"context"
)

// APIClient defines the interface for GLS Finland API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateShipment posts new shipments. The endpoint takes an array
	// and returns one info entry per shipment.
	CreateShipment(ctx context.Context, shipments []Shipment) ([]ShipmentInfo, error)
}

// ============================================================================
// API Request/Response Types (match the GLS Finland shipping API v2.1)
// ============================================================================

// Shipment is the outbound payload for POST create-shipment.
type Shipment struct {
	API            APIBlock        `json:"api"`
	Order          OrderBlock      `json:"order"`
	DeliveryAddr   Address         `json:"deladdr"`
	Details        ShipmentBlock   `json:"shipment"`
	TransportUnits []TransportUnit `json:"transportunits"`
	Services       []Service       `json:"services,omitempty"`
}

// APIBlock carries request metadata.
type APIBlock struct {
	UUID         string  `json:"uuid"`
	Version      float64 `json:"version"`
	Mode         string  `json:"mode"` // "test" or "production"
	SourceSystem string  `json:"sourcesystem"`
}

// OrderBlock carries order metadata.
type OrderBlock struct {
	CustomerNumber string `json:"glscustno"`
	LabelType      string `json:"labeltype"`
}

// Address is a GLS delivery address. Field lengths are enforced by the
// API; the client truncates before sending.
type Address struct {
	AddrType    string `json:"addrtype"` // "business" or "private"
	Name1       string `json:"name1"`
	ContactName string `json:"contactname,omitempty"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	PostAddr    string `json:"postaddr,omitempty"` // city
	ZipCode     string `json:"zipcode,omitempty"`
	Country     string `json:"country,omitempty"`
	Email       string `json:"email,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
	VATID       string `json:"vatid,omitempty"`
}

// ShipmentBlock describes the shipment as a whole.
type ShipmentBlock struct {
	Contents    string  `json:"contents"`
	Product     string  `json:"glsproduct"`
	Incoterm    string  `json:"inco,omitempty"`
	Info        string  `json:"info"`
	ShipperRef  string  `json:"shipperref"`
	TotalWeight float64 `json:"totalweight"`
}

// TransportUnit is one parcel in the outbound payload.
type TransportUnit struct {
	Contents string  `json:"contents"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height,omitempty"`
	Length   float64 `json:"length,omitempty"`
	Width    float64 `json:"width,omitempty"`
}

// Service is one requested additional service.
type Service struct {
	Service string `json:"service"`
	Info    string `json:"info,omitempty"`
}

// ShipmentInfo is one entry of the create-shipment response.
type ShipmentInfo struct {
	TransportUnits []TransportUnitInfo `json:"transportunits"`
	// LabelPDF is the base64-encoded label document.
	LabelPDF string `json:"labelpdf"`
}

// TransportUnitInfo is one booked parcel in the response.
type TransportUnitInfo struct {
	TrackingNumber string `json:"glstrackingno"`
}
