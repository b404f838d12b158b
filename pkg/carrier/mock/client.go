// Package mock provides a configurable in-memory carrier for tests.
package mock

import (
	"context"
	"fmt"

	"github.com/nordlink/dispatch/pkg/carrier"
)

// Carrier is a mock implementation of carrier.Carrier. Behavior can be
// overridden per call via the On* hooks; call counts are recorded so
// tests can assert that no network-facing call was made.
type Carrier struct {
	name string

	SendCalls   int
	CancelCalls int

	OnSend   func(ctx context.Context, group *carrier.Group) (*carrier.Result, error)
	OnCancel func(ctx context.Context, trackingRef string) error
}

// New creates a mock carrier with the given name.
func New(name string) *Carrier {
	return &Carrier{name: name}
}

// Name returns the carrier name.
func (c *Carrier) Name() string {
	return c.name
}

// Send books a fake shipment. The default behavior returns a tracking
// reference derived from the group's correlation id and one label.
func (c *Carrier) Send(ctx context.Context, group *carrier.Group) (*carrier.Result, error) {
	c.SendCalls++
	if c.OnSend != nil {
		return c.OnSend(ctx, group)
	}

	tracking := "MOCK" + group.CorrelationID[:8]
	filename := fmt.Sprintf("%s_%s.pdf", group.Items[0].Name, tracking)
	return &carrier.Result{
		TrackingRef:   tracking,
		TrackingCodes: []string{tracking},
		Labels: []carrier.Label{
			{Filename: filename, Data: []byte("%PDF-1.4 mock label")},
		},
	}, nil
}

// Cancel cancels a fake shipment.
func (c *Carrier) Cancel(ctx context.Context, trackingRef string) error {
	c.CancelCalls++
	if c.OnCancel != nil {
		return c.OnCancel(ctx, trackingRef)
	}
	return nil
}

// TrackingLink returns a fake tracking URL.
func (c *Carrier) TrackingLink(trackingRef string) string {
	return "https://tracking.example.com/" + trackingRef
}

var _ carrier.Carrier = (*Carrier)(nil)
