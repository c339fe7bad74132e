package collector

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var unmatchedLineItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ordersync_unmatched_line_items_total",
	Help: "Line items dropped during enrichment because no catalog item matched",
})

// UnmatchedLineItemFunc observes a line item dropped during enrichment
// because its catalog reference could not be resolved.
type UnmatchedLineItemFunc func(orderID, catalogObjectID string)

// Enricher resolves the catalog references of a raw order and produces the
// normalized order.
type Enricher struct {
	catalog     CatalogLookup
	onUnmatched UnmatchedLineItemFunc
	logger      zerolog.Logger
}

// NewEnricher creates an enricher. onUnmatched may be nil; unmatched line
// items are then only counted and logged.
func NewEnricher(catalog CatalogLookup, onUnmatched UnmatchedLineItemFunc, logger zerolog.Logger) *Enricher {
	return &Enricher{
		catalog:     catalog,
		onUnmatched: onUnmatched,
		logger:      logger,
	}
}

// Enrich resolves all catalog references of one raw order in a single lookup
// call and maps its line items to normalized line items. Line items whose
// catalog reference has no match are dropped from the normalized order; the
// order itself is never dropped. The recipient comes from the first
// fulfillment entry carrying one; absent fulfillments yield an empty
// recipient, never an error.
func (e *Enricher) Enrich(ctx context.Context, raw RawOrder) (NormalizedOrder, error) {
	order := NormalizedOrder{
		OrderID:      raw.ID,
		Status:       raw.State,
		CreatedAtUTC: raw.CreatedAtUTC,
		UpdatedAtUTC: raw.UpdatedAtUTC,
		Total:        raw.Total,
		Currency:     raw.Currency,
		Recipient:    shipmentRecipient(raw.Fulfillments),
	}

	if len(raw.LineItems) == 0 {
		return order, nil
	}

	byVariation := make(map[string]CatalogItem)
	if ids := catalogObjectIDs(raw.LineItems); len(ids) > 0 {
		items, err := e.catalog.Resolve(ctx, ids)
		if err != nil {
			return NormalizedOrder{}, fmt.Errorf("resolve catalog items for order %s: %w", raw.ID, err)
		}

		for _, item := range items {
			// First match wins
			if _, ok := byVariation[item.VariationID]; !ok {
				byVariation[item.VariationID] = item
			}
		}
	}

	order.LineItems = make([]NormalizedLineItem, 0, len(raw.LineItems))
	for _, li := range raw.LineItems {
		item, ok := byVariation[li.CatalogObjectID]
		if !ok {
			unmatchedLineItemsTotal.Inc()
			e.logger.Warn().
				Str("order_id", raw.ID).
				Str("catalog_object_id", li.CatalogObjectID).
				Msg("Dropping line item with unmatched catalog reference")
			if e.onUnmatched != nil {
				e.onUnmatched(raw.ID, li.CatalogObjectID)
			}
			continue
		}

		order.LineItems = append(order.LineItems, NormalizedLineItem{
			VariationID: item.VariationID,
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    li.Quantity,
		})
	}

	return order, nil
}

// catalogObjectIDs collects the distinct, non-blank catalog object ids
// referenced by the line items, in first-seen order.
func catalogObjectIDs(lineItems []RawLineItem) []string {
	seen := make(map[string]struct{}, len(lineItems))
	ids := make([]string, 0, len(lineItems))
	for _, li := range lineItems {
		if li.CatalogObjectID == "" {
			continue
		}
		if _, ok := seen[li.CatalogObjectID]; ok {
			continue
		}
		seen[li.CatalogObjectID] = struct{}{}
		ids = append(ids, li.CatalogObjectID)
	}
	return ids
}

// shipmentRecipient returns the recipient of the first fulfillment that
// carries one, or a zero recipient.
func shipmentRecipient(fulfillments []Fulfillment) Recipient {
	for _, f := range fulfillments {
		if f.Recipient != nil {
			return *f.Recipient
		}
	}
	return Recipient{}
}
