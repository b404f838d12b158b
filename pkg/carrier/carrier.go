// Package carrier provides an abstraction layer for shipping carriers.
package carrier

import (
	"context"
)

// Carrier defines the interface that all shipping carriers must implement.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "gls_finland", "nshift").
	Name() string

	// Send books a consolidated shipment group with the carrier and
	// returns tracking references and label documents.
	Send(ctx context.Context, group *Group) (*Result, error)

	// Cancel cancels a previously booked shipment by tracking reference.
	// Carriers that do not support cancellation fail fast with
	// ErrCancelNotSupported without touching the network.
	Cancel(ctx context.Context, trackingRef string) error

	// TrackingLink returns the public tracking URL for a shipment.
	// This is pure string templating, no API call is made.
	TrackingLink(trackingRef string) string
}

// CatalogEntry is one carrier/service combination offered upstream.
type CatalogEntry struct {
	PartnerCode string
	CarrierName string
	ServiceCode string
	ServiceName string
}

// CatalogProvider is implemented by carriers whose service list can be
// refreshed from the upstream API (nShift only at the moment).
type CatalogProvider interface {
	Services(ctx context.Context) ([]CatalogEntry, error)
}

// ZipcodeInfo describes a postal code as known by the carrier.
type ZipcodeInfo struct {
	ZipCode     string `json:"zipcode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// ZipcodeResolver is implemented by carriers that expose a postal code
// lookup endpoint.
type ZipcodeResolver interface {
	LookupZipcode(ctx context.Context, zip, countryCode string) ([]ZipcodeInfo, error)
}
