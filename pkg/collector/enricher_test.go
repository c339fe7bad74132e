package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nopLogger = zerolog.New(nil).Level(zerolog.Disabled)

func TestEnrich_MatchedLineItem(t *testing.T) {
	catalog := &fakeCatalog{
		items: []CatalogItem{
			{VariationID: "VAR-X", SKU: "S", Name: "Widget"},
		},
	}
	enricher := NewEnricher(catalog, nil, nopLogger)

	raw := RawOrder{
		ID:    "ORD-1",
		State: "COMPLETED",
		LineItems: []RawLineItem{
			{CatalogObjectID: "VAR-X", Quantity: decimal.NewFromInt(3)},
		},
	}

	order, err := enricher.Enrich(context.Background(), raw)
	require.NoError(t, err)

	require.Len(t, order.LineItems, 1)
	assert.Equal(t, "S", order.LineItems[0].SKU)
	assert.Equal(t, "Widget", order.LineItems[0].Name)
	assert.True(t, order.LineItems[0].Quantity.Equal(decimal.NewFromInt(3)),
		"quantity must be preserved")
	assert.Equal(t, "ORD-1", order.OrderID)
	assert.Equal(t, "COMPLETED", order.Status)
}

func TestEnrich_UnmatchedLineItemDropped(t *testing.T) {
	catalog := &fakeCatalog{} // resolves nothing

	var droppedOrder, droppedID string
	enricher := NewEnricher(catalog, func(orderID, catalogObjectID string) {
		droppedOrder = orderID
		droppedID = catalogObjectID
	}, nopLogger)

	raw := RawOrder{
		ID: "ORD-2",
		LineItems: []RawLineItem{
			{CatalogObjectID: "VAR-MISSING", Quantity: decimal.NewFromInt(1)},
		},
	}

	order, err := enricher.Enrich(context.Background(), raw)
	require.NoError(t, err, "an unmatched line item is not an error")

	assert.Empty(t, order.LineItems, "unmatched line items are dropped")
	assert.Equal(t, "ORD-2", order.OrderID, "the order itself survives")
	assert.Equal(t, "ORD-2", droppedOrder)
	assert.Equal(t, "VAR-MISSING", droppedID)
}

func TestEnrich_DistinctIDsSingleLookup(t *testing.T) {
	catalog := &fakeCatalog{
		items: []CatalogItem{
			{VariationID: "VAR-A", SKU: "SKU-A"},
			{VariationID: "VAR-B", SKU: "SKU-B"},
		},
	}
	enricher := NewEnricher(catalog, nil, nopLogger)

	raw := RawOrder{
		ID: "ORD-3",
		LineItems: []RawLineItem{
			{CatalogObjectID: "VAR-A", Quantity: decimal.NewFromInt(1)},
			{CatalogObjectID: "VAR-B", Quantity: decimal.NewFromInt(2)},
			{CatalogObjectID: "VAR-A", Quantity: decimal.NewFromInt(4)},
			{CatalogObjectID: "", Quantity: decimal.NewFromInt(9)},
		},
	}

	order, err := enricher.Enrich(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.calls, "all references resolved in one lookup call")
	assert.Equal(t, []string{"VAR-A", "VAR-B"}, catalog.lastIDs,
		"distinct non-blank ids only")

	// Blank reference dropped, duplicates each mapped
	require.Len(t, order.LineItems, 3)
	assert.Equal(t, "SKU-A", order.LineItems[0].SKU)
	assert.Equal(t, "SKU-B", order.LineItems[1].SKU)
	assert.Equal(t, "SKU-A", order.LineItems[2].SKU)
}

func TestEnrich_NoLineItemsSkipsLookup(t *testing.T) {
	catalog := &fakeCatalog{}
	enricher := NewEnricher(catalog, nil, nopLogger)

	order, err := enricher.Enrich(context.Background(), RawOrder{ID: "ORD-4"})
	require.NoError(t, err)

	assert.Zero(t, catalog.calls, "no lookup for an order without line items")
	assert.Empty(t, order.LineItems)
}

func TestEnrich_RecipientFromFirstShipment(t *testing.T) {
	enricher := NewEnricher(&fakeCatalog{}, nil, nopLogger)

	tests := []struct {
		name         string
		fulfillments []Fulfillment
		expected     Recipient
	}{
		{
			name: "first carrying recipient wins",
			fulfillments: []Fulfillment{
				{Recipient: nil},
				{Recipient: &Recipient{Name: "Ada", Email: "ada@example.com"}},
				{Recipient: &Recipient{Name: "Grace"}},
			},
			expected: Recipient{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name:         "no fulfillments yields empty recipient",
			fulfillments: nil,
			expected:     Recipient{},
		},
		{
			name: "fulfillments without recipients yield empty recipient",
			fulfillments: []Fulfillment{
				{Recipient: nil},
			},
			expected: Recipient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawOrder{ID: "ORD-5", Fulfillments: tt.fulfillments}

			order, err := enricher.Enrich(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order.Recipient)
		})
	}
}

func TestEnrich_LookupErrorPropagates(t *testing.T) {
	lookupErr := errors.New("catalog unavailable")
	catalog := &fakeCatalog{err: lookupErr}
	enricher := NewEnricher(catalog, nil, nopLogger)

	raw := RawOrder{
		ID: "ORD-6",
		LineItems: []RawLineItem{
			{CatalogObjectID: "VAR-X", Quantity: decimal.NewFromInt(1)},
		},
	}

	_, err := enricher.Enrich(context.Background(), raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
}
