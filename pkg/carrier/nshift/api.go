package nshift

import (
	"context"

	"github.com/nordlink/dispatch/pkg/carrier"
)

// APIClient defines the interface for nShift (Unifaun) API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateShipment posts a new shipment and returns the booked
	// shipments with their parcels and label documents.
	CreateShipment(ctx context.Context, req *CreateRequest) ([]BookedShipment, error)

	// CancelShipment deletes a shipment by id.
	CancelShipment(ctx context.Context, shipmentID string) error

	// ListPartners fetches all carriers and their services.
	ListPartners(ctx context.Context) ([]Partner, error)

	// ZipcodeLookup queries postal code information.
	ZipcodeLookup(ctx context.Context, zip, countryCode string) ([]carrier.ZipcodeInfo, error)
}

// ============================================================================
// API Request/Response Types (match the Unifaun REST API /rs-extapi/v1)
// ============================================================================

// CreateRequest is the outbound payload for POST shipments?returnFile=true.
type CreateRequest struct {
	Shipment  Shipment  `json:"shipment"`
	PDFConfig PDFConfig `json:"pdfConfig"`
}

// Shipment is the shipment description.
type Shipment struct {
	OrderNo           string          `json:"orderNo"`
	SenderReference   string          `json:"senderReference"`
	Sender            Address         `json:"sender"`
	SenderPartners    []SenderPartner `json:"senderPartners"`
	Receiver          Address         `json:"receiver"`
	Service           ServiceRef      `json:"service"`
	Parcels           []Parcel        `json:"parcels"`
	ReceiverReference string          `json:"receiverReference"`
}

// SenderPartner identifies the carrier agreement used for the shipment.
type SenderPartner struct {
	ID             string `json:"id"`
	CustomerNumber string `json:"custNo"`
}

// Address is an nShift address. The API imposes no field length limits
// and tolerates missing fields, including the street.
type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	ZipCode  string `json:"zipcode"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// ServiceRef selects the carrier service.
type ServiceRef struct {
	ID string `json:"id"`
}

// Parcel is one package in the outbound payload.
type Parcel struct {
	Copies         int     `json:"copies"`
	Weight         float64 `json:"weight"`
	Contents       string  `json:"contents"`
	ValuePerParcel bool    `json:"valuePerParcel"`
	Volume         float64 `json:"volume"`
}

// PDFConfig controls label rendering. Unset targets are sent as null.
type PDFConfig struct {
	Target1Media   *string `json:"target1Media"`
	Target1XOffset float64 `json:"target1XOffset"`
	Target1YOffset float64 `json:"target1YOffset"`
	Target2Media   *string `json:"target2Media"`
	Target2XOffset float64 `json:"target2XOffset"`
	Target2YOffset float64 `json:"target2YOffset"`
	Target3Media   *string `json:"target3Media"`
	Target3XOffset float64 `json:"target3XOffset"`
	Target3YOffset float64 `json:"target3YOffset"`
	Target4Media   *string `json:"target4Media"`
	Target4XOffset float64 `json:"target4XOffset"`
	Target4YOffset float64 `json:"target4YOffset"`
}

// DefaultPDFConfig returns the standard label layout: sticker on
// target 1, A4 fallback on target 2.
func DefaultPDFConfig() PDFConfig {
	laserSte := "laser-ste"
	laserA4 := "laser-a4"
	return PDFConfig{
		Target1Media: &laserSte,
		Target2Media: &laserA4,
	}
}

// BookedShipment is one entry of the create-shipment response.
type BookedShipment struct {
	ID         string         `json:"id"`
	ShipmentNo string         `json:"shipmentNo"`
	Parcels    []BookedParcel `json:"parcels"`
	PDFs       []PDF          `json:"pdfs"`
}

// BookedParcel is one booked parcel in the response.
type BookedParcel struct {
	ParcelNo string `json:"parcelNo"`
}

// PDF is one returned label document.
type PDF struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	// Data is the base64-encoded PDF.
	Data string `json:"pdf"`
}

// Partner is one carrier in the partner catalog.
type Partner struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Services    []PartnerService `json:"services"`
}

// PartnerService is one service offered by a partner.
type PartnerService struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
