// Package store provides record-store implementations for transfer
// items and their label attachments.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/dispatch"
)

// Memory is an in-memory Store implementation, used in tests and when
// running against mock carriers.
type Memory struct {
	mu          sync.RWMutex
	items       map[string]*carrier.TransferItem
	attachments map[string][]dispatch.Attachment
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:       make(map[string]*carrier.TransferItem),
		attachments: make(map[string][]dispatch.Attachment),
	}
}

// Put inserts or replaces a transfer item.
func (m *Memory) Put(item *carrier.TransferItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

// Item loads a transfer item by id.
func (m *Memory) Item(ctx context.Context, id string) (*carrier.TransferItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, id)
	}
	cp := *item
	return &cp, nil
}

// ItemsByCorrelation loads all items sharing a correlation id.
func (m *Memory) ItemsByCorrelation(ctx context.Context, correlationID string) ([]*carrier.TransferItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*carrier.TransferItem
	for _, item := range m.items {
		if item.CorrelationID == correlationID {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

// SetCorrelationID stamps an item with a correlation id.
func (m *Memory) SetCorrelationID(ctx context.Context, itemID, correlationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, itemID)
	}
	item.CorrelationID = correlationID
	return nil
}

// SetTracking writes the tracking reference and codes of a sent item.
func (m *Memory) SetTracking(ctx context.Context, itemID, trackingRef string, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, itemID)
	}
	item.TrackingRef = trackingRef
	item.TrackingCodes = append([]string(nil), codes...)
	return nil
}

// AddAttachment persists a label document against an item.
func (m *Memory) AddAttachment(ctx context.Context, itemID string, att dispatch.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[itemID]; !ok {
		return fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, itemID)
	}
	m.attachments[itemID] = append(m.attachments[itemID], att)
	return nil
}

// AttachmentsByItem loads the label documents of an item.
func (m *Memory) AttachmentsByItem(ctx context.Context, itemID string) ([]dispatch.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]dispatch.Attachment(nil), m.attachments[itemID]...), nil
}

// Ensure Memory implements the store port
var _ dispatch.Store = (*Memory)(nil)
