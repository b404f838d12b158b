package carrier

import (
	"github.com/google/uuid"
)

// BuildGroup assembles one or more transfer items into a consolidated
// shipment group. All items must share the same destination party and at
// most one distinct incoterm; violations are validation errors, not
// retry candidates.
//
// Parcel expansion rules, in priority order:
//  1. an explicit parcel count on the group distributes the total weight
//     evenly over that many synthetic parcels;
//  2. otherwise one parcel per declared sub-package;
//  3. otherwise the whole group collapses into a single parcel.
func BuildGroup(items []*TransferItem) (*Group, error) {
	if len(items) == 0 {
		return nil, NewValidationError("cannot build a shipment from zero transfer items")
	}

	destination, err := groupDestination(items)
	if err != nil {
		return nil, err
	}

	incoterm, err := groupIncoterm(items)
	if err != nil {
		return nil, err
	}

	correlationID, err := groupCorrelationID(items)
	if err != nil {
		return nil, err
	}

	g := &Group{
		CorrelationID: correlationID,
		Destination:   destination,
		Incoterm:      incoterm,
		Items:         items,
	}

	contents := make([]string, 0, len(items))
	infos := make([]string, 0, len(items))
	origins := make([]string, 0, len(items))
	names := make([]string, 0, len(items))
	parcelCount := 0
	for _, item := range items {
		contents = append(contents, Coalesce(item.Contents, item.Origin))
		infos = append(infos, item.ShipmentInfo)
		origins = append(origins, item.Origin)
		names = append(names, item.Name)
		g.CustomerRef = Coalesce(g.CustomerRef, item.CustomerRef)
		g.TotalWeight += item.ShipWeight()
		g.TotalVolume += item.Volume
		parcelCount += item.Parcels
	}
	g.Contents = JoinNonEmpty(contents...)
	g.Info = JoinNonEmpty(infos...)
	g.Reference = JoinNonEmpty(origins...)
	g.SenderRef = JoinNonEmpty(names...)

	g.Parcels = expandParcels(g, items, parcelCount)
	for _, p := range g.Parcels {
		if p.Weight <= 0 {
			return nil, NewValidationError(
				"parcel weight must be positive, got %v (check item shipping weights)", p.Weight)
		}
	}

	return g, nil
}

// groupDestination verifies all items ship to the same party.
func groupDestination(items []*TransferItem) (*Party, error) {
	var destination *Party
	for _, item := range items {
		if item.Destination == nil {
			return nil, NewValidationError("transfer item %s has no destination party", item.ID)
		}
		if destination == nil {
			destination = item.Destination
			continue
		}
		if item.Destination.ID != destination.ID {
			return nil, NewValidationError(
				"trying to send one shipment to multiple destinations (%s and %s)",
				destination.ID, item.Destination.ID)
		}
	}
	return destination, nil
}

// groupIncoterm verifies the group carries at most one distinct incoterm.
func groupIncoterm(items []*TransferItem) (string, error) {
	incoterm := ""
	for _, item := range items {
		if item.Incoterm == "" {
			continue
		}
		if incoterm == "" {
			incoterm = item.Incoterm
			continue
		}
		if item.Incoterm != incoterm {
			return "", NewValidationError(
				"conflicting incoterms %s and %s in one shipment", incoterm, item.Incoterm)
		}
	}
	return incoterm, nil
}

// groupCorrelationID adopts the batch's existing correlation id or mints
// a new one. Two distinct ids in one batch means the caller mixed
// unrelated consolidation groups.
func groupCorrelationID(items []*TransferItem) (string, error) {
	id := ""
	for _, item := range items {
		if item.CorrelationID == "" {
			continue
		}
		if id == "" {
			id = item.CorrelationID
			continue
		}
		if item.CorrelationID != id {
			return "", NewValidationError(
				"conflicting correlation ids %s and %s in one shipment", id, item.CorrelationID)
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	return id, nil
}

func expandParcels(g *Group, items []*TransferItem, parcelCount int) []Parcel {
	if parcelCount > 0 {
		// Explicit parcel count overrides declared packages. Weight is
		// distributed evenly; per-item distribution is not tracked.
		weight := g.TotalWeight / float64(parcelCount)
		parcels := make([]Parcel, parcelCount)
		for i := range parcels {
			parcels[i] = Parcel{
				Weight:   weight,
				Contents: g.Contents,
				Copies:   1,
			}
		}
		return parcels
	}

	var parcels []Parcel
	for _, item := range items {
		for i := range item.Packages {
			pkg := &item.Packages[i]
			parcels = append(parcels, Parcel{
				Weight:   pkg.ShipWeight(),
				Length:   pkg.Length,
				Width:    pkg.Width,
				Height:   pkg.Height,
				Volume:   pkg.Volume,
				Contents: Coalesce(pkg.Contents, g.Contents),
				Copies:   1,
			})
		}
	}
	if len(parcels) > 0 {
		return parcels
	}

	// The whole group is one package.
	return []Parcel{{
		Weight:   g.TotalWeight,
		Volume:   g.TotalVolume,
		Contents: g.Contents,
		Copies:   1,
	}}
}
