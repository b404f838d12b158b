package dispatch

import (
	"context"
	"errors"

	"github.com/nordlink/dispatch/pkg/carrier"
)

// ErrItemNotFound indicates the transfer item id is unknown to the store.
var ErrItemNotFound = errors.New("transfer item not found")

// Attachment is a label document persisted against a transfer item.
type Attachment struct {
	Filename string
	Data     []byte
}

// Store is the record-store port implemented by the host platform.
// Reads cover the full transfer item; writes are limited to the
// correlation id, tracking fields and label attachments — the
// dispatcher never touches anything else.
type Store interface {
	// Item loads a transfer item by id.
	Item(ctx context.Context, id string) (*carrier.TransferItem, error)

	// ItemsByCorrelation loads all items sharing a correlation id.
	ItemsByCorrelation(ctx context.Context, correlationID string) ([]*carrier.TransferItem, error)

	// SetCorrelationID stamps an item with a correlation id.
	SetCorrelationID(ctx context.Context, itemID, correlationID string) error

	// SetTracking writes the tracking reference and codes of a sent item.
	SetTracking(ctx context.Context, itemID, trackingRef string, codes []string) error

	// AddAttachment persists a label document against an item.
	AddAttachment(ctx context.Context, itemID string, att Attachment) error

	// AttachmentsByItem loads the label documents of an item.
	AttachmentsByItem(ctx context.Context, itemID string) ([]Attachment, error)
}
