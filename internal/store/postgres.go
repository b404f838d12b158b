package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/nordlink/dispatch/pkg/dispatch"
)

// Postgres is a pgx-backed Store implementation. It adapts the host
// platform's transfer_items / parties / label_attachments tables to the
// dispatch store port; writes stay within the correlation id, tracking
// and attachment columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const itemColumns = `
	i.id, i.name, i.origin, i.contents, i.shipment_info, i.customer_ref,
	i.incoterm, i.weight, i.shipping_weight, i.volume, i.parcels,
	i.packages, i.correlation_id, i.tracking_ref, i.tracking_codes,
	d.id, d.name, d.company_name, d.is_company, d.street, d.street2,
	d.city, d.zip, d.country_code, d.email, d.delivery_email, d.phone,
	d.mobile, d.vat_id,
	c.id, c.name, c.company_name, c.is_company, c.street, c.street2,
	c.city, c.zip, c.country_code, c.email, c.delivery_email, c.phone,
	c.mobile, c.vat_id`

const itemFrom = `
	FROM transfer_items i
	JOIN parties d ON d.id = i.destination_id
	LEFT JOIN parties c ON c.id = d.commercial_id`

// Item loads a transfer item by id.
func (p *Postgres) Item(ctx context.Context, id string) (*carrier.TransferItem, error) {
	row := p.pool.QueryRow(ctx,
		"SELECT"+itemColumns+itemFrom+" WHERE i.id = $1", id)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading transfer item %s: %w", id, err)
	}
	return item, nil
}

// ItemsByCorrelation loads all items sharing a correlation id.
func (p *Postgres) ItemsByCorrelation(ctx context.Context, correlationID string) ([]*carrier.TransferItem, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT"+itemColumns+itemFrom+" WHERE i.correlation_id = $1 ORDER BY i.id",
		correlationID)
	if err != nil {
		return nil, fmt.Errorf("loading correlation group %s: %w", correlationID, err)
	}
	defer rows.Close()

	var items []*carrier.TransferItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetCorrelationID stamps an item with a correlation id.
func (p *Postgres) SetCorrelationID(ctx context.Context, itemID, correlationID string) error {
	tag, err := p.pool.Exec(ctx,
		"UPDATE transfer_items SET correlation_id = $2 WHERE id = $1",
		itemID, correlationID)
	if err != nil {
		return fmt.Errorf("stamping correlation id on %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, itemID)
	}
	return nil
}

// SetTracking writes the tracking reference and codes of a sent item.
func (p *Postgres) SetTracking(ctx context.Context, itemID, trackingRef string, codes []string) error {
	tag, err := p.pool.Exec(ctx,
		"UPDATE transfer_items SET tracking_ref = $2, tracking_codes = $3 WHERE id = $1",
		itemID, trackingRef, codes)
	if err != nil {
		return fmt.Errorf("writing tracking on %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", dispatch.ErrItemNotFound, itemID)
	}
	return nil
}

// AddAttachment persists a label document against an item.
func (p *Postgres) AddAttachment(ctx context.Context, itemID string, att dispatch.Attachment) error {
	_, err := p.pool.Exec(ctx,
		"INSERT INTO label_attachments (item_id, filename, data) VALUES ($1, $2, $3)",
		itemID, att.Filename, att.Data)
	if err != nil {
		return fmt.Errorf("storing attachment for %s: %w", itemID, err)
	}
	return nil
}

// AttachmentsByItem loads the label documents of an item.
func (p *Postgres) AttachmentsByItem(ctx context.Context, itemID string) ([]dispatch.Attachment, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT filename, data FROM label_attachments WHERE item_id = $1 ORDER BY id",
		itemID)
	if err != nil {
		return nil, fmt.Errorf("loading attachments for %s: %w", itemID, err)
	}
	defer rows.Close()

	var atts []dispatch.Attachment
	for rows.Next() {
		var att dispatch.Attachment
		if err := rows.Scan(&att.Filename, &att.Data); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		atts = append(atts, att)
	}
	return atts, rows.Err()
}

func scanItem(row pgx.Row) (*carrier.TransferItem, error) {
	var (
		item        carrier.TransferItem
		packagesRaw []byte
		dest        carrier.Party
		comm        partyRow
	)

	err := row.Scan(
		&item.ID, &item.Name, &item.Origin, &item.Contents, &item.ShipmentInfo,
		&item.CustomerRef, &item.Incoterm, &item.Weight, &item.ShippingWeight,
		&item.Volume, &item.Parcels, &packagesRaw, &item.CorrelationID,
		&item.TrackingRef, &item.TrackingCodes,
		&dest.ID, &dest.Name, &dest.CompanyName, &dest.IsCompany, &dest.Street,
		&dest.Street2, &dest.City, &dest.Zip, &dest.CountryCode, &dest.Email,
		&dest.DeliveryEmail, &dest.Phone, &dest.Mobile, &dest.VATID,
		&comm.ID, &comm.Name, &comm.CompanyName, &comm.IsCompany, &comm.Street,
		&comm.Street2, &comm.City, &comm.Zip, &comm.CountryCode, &comm.Email,
		&comm.DeliveryEmail, &comm.Phone, &comm.Mobile, &comm.VATID,
	)
	if err != nil {
		return nil, err
	}

	if len(packagesRaw) > 0 {
		if err := json.Unmarshal(packagesRaw, &item.Packages); err != nil {
			return nil, fmt.Errorf("decoding packages column: %w", err)
		}
	}

	if comm.ID != nil {
		dest.Commercial = comm.party()
	}
	item.Destination = &dest
	return &item, nil
}

// partyRow scans a LEFT JOINed party where every column may be NULL.
type partyRow struct {
	ID            *string
	Name          *string
	CompanyName   *string
	IsCompany     *bool
	Street        *string
	Street2       *string
	City          *string
	Zip           *string
	CountryCode   *string
	Email         *string
	DeliveryEmail *string
	Phone         *string
	Mobile        *string
	VATID         *string
}

func (r *partyRow) party() *carrier.Party {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	p := &carrier.Party{
		ID:            deref(r.ID),
		Name:          deref(r.Name),
		CompanyName:   deref(r.CompanyName),
		Street:        deref(r.Street),
		Street2:       deref(r.Street2),
		City:          deref(r.City),
		Zip:           deref(r.Zip),
		CountryCode:   deref(r.CountryCode),
		Email:         deref(r.Email),
		DeliveryEmail: deref(r.DeliveryEmail),
		Phone:         deref(r.Phone),
		Mobile:        deref(r.Mobile),
		VATID:         deref(r.VATID),
	}
	if r.IsCompany != nil {
		p.IsCompany = *r.IsCompany
	}
	return p
}

// Ensure Postgres implements the store port
var _ dispatch.Store = (*Postgres)(nil)
