// Package dispatch orchestrates shipment sends and cancellations over
// the carrier abstraction and the host platform's record store.
package dispatch

import (
	"context"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// State is the terminal state of a transfer item after a send attempt.
type State string

const (
	StateSent   State = "sent"
	StateFailed State = "failed"
)

// Outcome is the per-item result of a Send call.
type Outcome struct {
	ItemID      string
	State       State
	TrackingRef string
	Err         error
}

// Dispatcher drives shipment sends and cancellations. Items are
// processed sequentially in caller order; there is no internal retry.
// The caller must serialize concurrent sends for the same correlation
// id — a race would double-send the consolidated shipment.
type Dispatcher struct {
	store    Store
	registry *carrier.Registry
	sender   *carrier.Party
	logger   *otelzap.Logger
}

// New creates a dispatcher. The sender party identifies the shipping
// warehouse and is stamped on every outbound group.
func New(store Store, registry *carrier.Registry, sender *carrier.Party, logger *otelzap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

// Send ships the given transfer items through the named carrier.
// Items already sent are reported as sent without any work; items whose
// consolidation group already has a sent sibling copy the sibling's
// tracking data and label instead of calling the carrier again. The
// first failure aborts the batch and is returned unchanged alongside
// the outcomes collected so far.
func (d *Dispatcher) Send(ctx context.Context, carrierName string, itemIDs []string) ([]Outcome, error) {
	crr, err := d.registry.Get(carrierName)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		outcome, err := d.sendOne(ctx, crr, itemID)
		outcomes = append(outcomes, outcome)
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, crr carrier.Carrier, itemID string) (Outcome, error) {
	item, err := d.store.Item(ctx, itemID)
	if err != nil {
		return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
	}

	// Already sent: never re-send.
	if item.Sent() {
		d.logger.Info("Transfer item already sent, skipping",
			zap.String("item", item.Name),
			zap.String("tracking_ref", item.TrackingRef),
		)
		return Outcome{ItemID: itemID, State: StateSent, TrackingRef: item.TrackingRef}, nil
	}

	// Consolidated shipment short-circuit: a sibling in the same
	// correlation group has been sent already, so this item inherits
	// its tracking data and label without a new carrier call.
	if item.CorrelationID != "" {
		sibling, err := d.sentSibling(ctx, item)
		if err != nil {
			return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
		}
		if sibling != nil {
			return d.inheritFromSibling(ctx, item, sibling)
		}
	}

	group, err := d.assembleGroup(ctx, item)
	if err != nil {
		return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
	}

	result, err := crr.Send(ctx, group)
	if err != nil {
		return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
	}

	// Persist only after a fully successful response parse: first the
	// correlation id on every grouped item, then tracking and labels
	// on the item actually sent.
	for _, gi := range group.Items {
		if gi.CorrelationID == group.CorrelationID {
			continue
		}
		if err := d.store.SetCorrelationID(ctx, gi.ID, group.CorrelationID); err != nil {
			return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
		}
	}
	if err := d.store.SetTracking(ctx, item.ID, result.TrackingRef, result.TrackingCodes); err != nil {
		return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
	}
	for _, label := range result.Labels {
		att := Attachment{Filename: label.Filename, Data: label.Data}
		if err := d.store.AddAttachment(ctx, item.ID, att); err != nil {
			return Outcome{ItemID: itemID, State: StateFailed, Err: err}, err
		}
	}

	d.logger.Info("Sent transfer item",
		zap.String("item", item.Name),
		zap.String("carrier", crr.Name()),
		zap.String("tracking_ref", result.TrackingRef),
	)
	return Outcome{ItemID: itemID, State: StateSent, TrackingRef: result.TrackingRef}, nil
}

// sentSibling returns another item in the same correlation group that
// already carries a tracking reference, or nil.
func (d *Dispatcher) sentSibling(ctx context.Context, item *carrier.TransferItem) (*carrier.TransferItem, error) {
	siblings, err := d.store.ItemsByCorrelation(ctx, item.CorrelationID)
	if err != nil {
		return nil, err
	}
	for _, s := range siblings {
		if s.ID != item.ID && s.Sent() {
			return s, nil
		}
	}
	return nil, nil
}

// inheritFromSibling copies the sibling's tracking data and duplicates
// its label attachments onto the item. Zero carrier calls.
func (d *Dispatcher) inheritFromSibling(ctx context.Context, item, sibling *carrier.TransferItem) (Outcome, error) {
	d.logger.Info("Consolidated shipment already sent, copying tracking from sibling",
		zap.String("item", item.Name),
		zap.String("sibling", sibling.Name),
		zap.String("tracking_ref", sibling.TrackingRef),
	)

	if err := d.store.SetTracking(ctx, item.ID, sibling.TrackingRef, sibling.TrackingCodes); err != nil {
		return Outcome{ItemID: item.ID, State: StateFailed, Err: err}, err
	}

	atts, err := d.store.AttachmentsByItem(ctx, sibling.ID)
	if err != nil {
		return Outcome{ItemID: item.ID, State: StateFailed, Err: err}, err
	}
	for _, att := range atts {
		if err := d.store.AddAttachment(ctx, item.ID, att); err != nil {
			return Outcome{ItemID: item.ID, State: StateFailed, Err: err}, err
		}
	}

	return Outcome{ItemID: item.ID, State: StateSent, TrackingRef: sibling.TrackingRef}, nil
}

// assembleGroup collects the item's correlation siblings (or just the
// item itself when it has none) and builds the shipment group.
func (d *Dispatcher) assembleGroup(ctx context.Context, item *carrier.TransferItem) (*carrier.Group, error) {
	items := []*carrier.TransferItem{item}
	if item.CorrelationID != "" {
		siblings, err := d.store.ItemsByCorrelation(ctx, item.CorrelationID)
		if err != nil {
			return nil, err
		}
		if len(siblings) > 0 {
			items = siblings
		}
	}

	group, err := carrier.BuildGroup(items)
	if err != nil {
		return nil, err
	}
	group.Sender = d.sender
	return group, nil
}

// Cancel cancels the shipments of the given items through the named
// carrier. Items without a tracking reference are skipped. A failure
// aborts the whole batch rather than continuing best-effort.
func (d *Dispatcher) Cancel(ctx context.Context, carrierName string, itemIDs []string) error {
	crr, err := d.registry.Get(carrierName)
	if err != nil {
		return err
	}

	for _, itemID := range itemIDs {
		item, err := d.store.Item(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Sent() {
			continue
		}
		if err := crr.Cancel(ctx, item.TrackingRef); err != nil {
			return err
		}
		d.logger.Info("Cancelled shipment",
			zap.String("item", item.Name),
			zap.String("tracking_ref", item.TrackingRef),
		)
	}
	return nil
}
