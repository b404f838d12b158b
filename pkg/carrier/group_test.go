package carrier_test

import (
	"testing"

	"github.com/nordlink/dispatch/pkg/carrier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDestination(id string) *carrier.Party {
	return &carrier.Party{
		ID:          id,
		Name:        "Receiver Oy",
		Street:      "Mannerheimintie 1",
		City:        "Helsinki",
		Zip:         "00100",
		CountryCode: "FI",
	}
}

func TestBuildGroup_Empty(t *testing.T) {
	_, err := carrier.BuildGroup(nil)

	assert.Error(t, err)
	assert.True(t, carrier.IsValidation(err))
}

func TestBuildGroup_SingleItem(t *testing.T) {
	item := &carrier.TransferItem{
		ID:          "1",
		Name:        "WH/OUT/00042",
		Origin:      "SO0042",
		Contents:    "Spare parts",
		Weight:      4.5,
		Destination: testDestination("dest-1"),
	}

	g, err := carrier.BuildGroup([]*carrier.TransferItem{item})

	require.NoError(t, err)
	assert.NotEmpty(t, g.CorrelationID, "should mint a correlation id")
	assert.Equal(t, "Spare parts", g.Contents)
	assert.Equal(t, "SO0042", g.Reference)
	assert.Equal(t, "WH/OUT/00042", g.SenderRef)
	assert.Equal(t, 4.5, g.TotalWeight)

	require.Len(t, g.Parcels, 1)
	assert.Equal(t, 4.5, g.Parcels[0].Weight)
}

func TestBuildGroup_MultipleDestinations(t *testing.T) {
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1, Destination: testDestination("dest-1")},
		{ID: "2", Weight: 1, Destination: testDestination("dest-2")},
	}

	_, err := carrier.BuildGroup(items)

	require.Error(t, err)
	assert.True(t, carrier.IsValidation(err))
	assert.Contains(t, err.Error(), "multiple destinations")
}

func TestBuildGroup_MissingDestination(t *testing.T) {
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1},
	}

	_, err := carrier.BuildGroup(items)

	assert.True(t, carrier.IsValidation(err))
}

func TestBuildGroup_ConflictingIncoterms(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1, Incoterm: "DAP", Destination: dest},
		{ID: "2", Weight: 1, Incoterm: "EXW", Destination: dest},
	}

	_, err := carrier.BuildGroup(items)

	assert.True(t, carrier.IsValidation(err))
}

func TestBuildGroup_SharedIncoterm(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1, Incoterm: "DAP", Destination: dest},
		{ID: "2", Weight: 1, Destination: dest},
	}

	g, err := carrier.BuildGroup(items)

	require.NoError(t, err)
	assert.Equal(t, "DAP", g.Incoterm)
}

func TestBuildGroup_AdoptsCorrelationID(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1, CorrelationID: "batch-7", Destination: dest},
		{ID: "2", Weight: 1, Destination: dest},
	}

	g, err := carrier.BuildGroup(items)

	require.NoError(t, err)
	assert.Equal(t, "batch-7", g.CorrelationID)
}

func TestBuildGroup_ConflictingCorrelationIDs(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 1, CorrelationID: "batch-7", Destination: dest},
		{ID: "2", Weight: 1, CorrelationID: "batch-8", Destination: dest},
	}

	_, err := carrier.BuildGroup(items)

	assert.True(t, carrier.IsValidation(err))
}

func TestBuildGroup_ExplicitParcelCount(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Weight: 6.0, Parcels: 2, Destination: dest},
		{ID: "2", Weight: 3.0, Parcels: 1, Destination: dest},
	}

	g, err := carrier.BuildGroup(items)

	require.NoError(t, err)
	require.Len(t, g.Parcels, 3)
	for _, p := range g.Parcels {
		assert.InDelta(t, 3.0, p.Weight, 0.001)
		assert.Equal(t, 1, p.Copies)
	}
}

func TestBuildGroup_ParcelsFromPackages(t *testing.T) {
	item := &carrier.TransferItem{
		ID:     "1",
		Weight: 10,
		Packages: []carrier.SubPackage{
			{Weight: 4, Length: 30, Width: 20, Height: 10, Contents: "Box A"},
			{Weight: 6, ShippingWeight: 6.5},
		},
		Contents:    "Machine parts",
		Destination: testDestination("dest-1"),
	}

	g, err := carrier.BuildGroup([]*carrier.TransferItem{item})

	require.NoError(t, err)
	require.Len(t, g.Parcels, 2)
	assert.Equal(t, 4.0, g.Parcels[0].Weight)
	assert.Equal(t, "Box A", g.Parcels[0].Contents)
	assert.Equal(t, 6.5, g.Parcels[1].Weight, "shipping weight wins over gross weight")
	assert.Equal(t, "Machine parts", g.Parcels[1].Contents, "falls back to group contents")
}

func TestBuildGroup_ShippingWeightFallback(t *testing.T) {
	item := &carrier.TransferItem{
		ID:             "1",
		Weight:         5.0,
		ShippingWeight: 5.8,
		Destination:    testDestination("dest-1"),
	}

	g, err := carrier.BuildGroup([]*carrier.TransferItem{item})

	require.NoError(t, err)
	assert.Equal(t, 5.8, g.TotalWeight)
}

func TestBuildGroup_ZeroWeightParcel(t *testing.T) {
	item := &carrier.TransferItem{
		ID:          "1",
		Destination: testDestination("dest-1"),
	}

	_, err := carrier.BuildGroup([]*carrier.TransferItem{item})

	require.Error(t, err)
	assert.True(t, carrier.IsValidation(err))
}

func TestBuildGroup_JoinsReferences(t *testing.T) {
	dest := testDestination("dest-1")
	items := []*carrier.TransferItem{
		{ID: "1", Name: "WH/OUT/00001", Origin: "SO0001", Weight: 1, Destination: dest},
		{ID: "2", Name: "WH/OUT/00002", Origin: "SO0002", Weight: 1, CustomerRef: "PO-998", Destination: dest},
	}

	g, err := carrier.BuildGroup(items)

	require.NoError(t, err)
	assert.Equal(t, "SO0001, SO0002", g.Reference)
	assert.Equal(t, "WH/OUT/00001, WH/OUT/00002", g.SenderRef)
	assert.Equal(t, "PO-998", g.CustomerRef)
	// Items with no contents fall back to their origin reference.
	assert.Equal(t, "SO0001, SO0002", g.Contents)
}
