package carrier

import (
	"github.com/shopspring/decimal"
)

// Party represents a sender or receiver record as read from the host
// platform. The Commercial pointer links a contact to its commercial
// (parent company) entity; field fallbacks walk that link per field.
type Party struct {
	ID          string
	Name        string
	CompanyName string
	IsCompany   bool
	Street      string
	Street2     string
	City        string
	Zip         string
	CountryCode string // ISO 3166-1 alpha-2, e.g., "FI", "SE"
	Email       string
	// DeliveryEmail is a dedicated email for delivery notifications,
	// preferred over the general contact email for pre-advice services.
	DeliveryEmail string
	Phone         string
	Mobile        string
	VATID         string
	Commercial    *Party
}

// CommercialEntity returns the party's commercial (company) entity,
// or the party itself when it has no parent.
func (p *Party) CommercialEntity() *Party {
	if p.Commercial != nil {
		return p.Commercial
	}
	return p
}

// ContactEmail returns the party's email, falling back to the
// commercial entity.
func (p *Party) ContactEmail() string {
	return Coalesce(p.Email, p.CommercialEntity().Email)
}

// ContactPhone returns the party's phone, falling back to the
// commercial entity.
func (p *Party) ContactPhone() string {
	return Coalesce(p.Phone, p.CommercialEntity().Phone)
}

// ContactMobile returns the party's mobile, falling back to the
// commercial entity.
func (p *Party) ContactMobile() string {
	return Coalesce(p.Mobile, p.CommercialEntity().Mobile)
}

// TaxID returns the party's VAT id, falling back to the commercial entity.
func (p *Party) TaxID() string {
	return Coalesce(p.VATID, p.CommercialEntity().VATID)
}

// PreAdviceEmail resolves the recipient email for delivery notification
// services: delivery email first, then the commercial entity's delivery
// email, then the regular contact emails.
func (p *Party) PreAdviceEmail() string {
	return Coalesce(
		p.DeliveryEmail,
		p.CommercialEntity().DeliveryEmail,
		p.Email,
		p.CommercialEntity().Email,
	)
}

// SubPackage is one physical package declared on a transfer item.
type SubPackage struct {
	Weight         float64
	ShippingWeight float64
	Length         float64
	Width          float64
	Height         float64
	Volume         float64
	Contents       string
}

// ShipWeight returns the package's shipping weight, falling back to its
// gross weight.
func (s *SubPackage) ShipWeight() float64 {
	if s.ShippingWeight > 0 {
		return s.ShippingWeight
	}
	return s.Weight
}

// TransferItem is a single warehouse outbound movement ("picking") to be
// shipped. It is read from the host platform's record store; the
// dispatcher writes back only CorrelationID, TrackingRef and
// TrackingCodes, plus label attachments.
type TransferItem struct {
	ID             string
	Name           string // picking reference, e.g. "WH/OUT/00042"
	Origin         string // originating document, e.g. sale order number
	Contents       string
	ShipmentInfo   string
	CustomerRef    string // customer's own order reference
	Incoterm       string
	Weight         float64
	ShippingWeight float64
	Volume         float64
	Parcels        int // explicit parcel count, overrides packages
	Packages       []SubPackage
	CorrelationID  string // groups items into one consolidated shipment
	TrackingRef    string
	TrackingCodes  []string
	Destination    *Party
}

// ShipWeight returns the item's shipping weight, falling back to its
// gross weight.
func (t *TransferItem) ShipWeight() float64 {
	if t.ShippingWeight > 0 {
		return t.ShippingWeight
	}
	return t.Weight
}

// Sent reports whether the item already carries a tracking reference.
func (t *TransferItem) Sent() bool {
	return t.TrackingRef != ""
}

// Parcel is one transport unit within an outbound shipment.
type Parcel struct {
	Weight   float64
	Length   float64
	Width    float64
	Height   float64
	Volume   float64
	Contents string
	Copies   int
}

// Group is a set of transfer items consolidated into one outbound
// shipment. Built by BuildGroup and discarded after the send.
type Group struct {
	CorrelationID string
	Sender        *Party
	Destination   *Party
	Contents      string
	Info          string
	Reference     string // comma-joined origin references
	SenderRef     string // comma-joined picking names
	CustomerRef   string
	Incoterm      string
	TotalWeight   float64
	TotalVolume   float64
	Parcels       []Parcel
	Items         []*TransferItem
}

// Label is a carrier-issued printable document identifying a parcel.
type Label struct {
	Filename string
	Data     []byte
}

// Result is the outcome of a successful carrier send. Ephemeral: the
// dispatcher persists its fields onto the transfer item and drops it.
type Result struct {
	TrackingRef   string
	TrackingCodes []string
	// Price is a placeholder: neither carrier returns a price on
	// shipment creation.
	Price  decimal.Decimal
	Labels []Label
}
