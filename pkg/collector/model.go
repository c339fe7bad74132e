package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Location is one selling location of the merchant account. Immutable for
// the duration of a collection run.
type Location struct {
	ID     string
	Active bool
}

// TimeWindow bounds a collection run by order update time. StartUTC must be
// strictly before EndUTC.
type TimeWindow struct {
	StartUTC time.Time
	EndUTC   time.Time
}

// Valid reports whether the window is well formed.
func (w TimeWindow) Valid() bool {
	return w.StartUTC.Before(w.EndUTC)
}

// SearchRequest describes one paged order search call. Constructed fresh per
// page and immutable once issued.
type SearchRequest struct {
	// LocationIDs is one location batch, at most MaxLocationBatchSize ids.
	LocationIDs []string

	// UpdatedWindow filters orders by their update timestamp.
	UpdatedWindow TimeWindow

	// Cursor is the continuation token from the previous page.
	// Empty on the first page of a batch.
	Cursor string

	// PageSize is the maximum number of orders per page.
	PageSize int
}

// RawLineItem is one line item of a raw order as returned by the platform.
type RawLineItem struct {
	// CatalogObjectID references the catalog variation the item was sold
	// under. May be blank for ad-hoc items.
	CatalogObjectID string
	Name            string
	Quantity        decimal.Decimal
}

// Recipient identifies who an order ships to.
type Recipient struct {
	Name  string
	Email string
	Phone string
}

// Fulfillment is one fulfillment entry of a raw order. Only shipment
// fulfillments carry a recipient.
type Fulfillment struct {
	Recipient *Recipient
}

// RawOrder is an order record exactly as returned by the remote platform.
// Read-only to the pipeline.
type RawOrder struct {
	ID           string
	State        string
	CreatedAtUTC time.Time
	UpdatedAtUTC time.Time
	Total        decimal.Decimal
	Currency     string
	LineItems    []RawLineItem
	Fulfillments []Fulfillment
}

// CatalogItem is one catalog variation record, keyed by VariationID.
type CatalogItem struct {
	VariationID string
	SKU         string
	Name        string
}

// NormalizedLineItem is a catalog-enriched line item of a normalized order.
type NormalizedLineItem struct {
	VariationID string
	SKU         string
	Name        string
	Quantity    decimal.Decimal
}

// NormalizedOrder is the terminal output unit of the pipeline, one per raw
// order. Immutable after construction.
type NormalizedOrder struct {
	OrderID      string
	Status       string
	CreatedAtUTC time.Time
	UpdatedAtUTC time.Time
	Total        decimal.Decimal
	Currency     string
	LineItems    []NormalizedLineItem
	Recipient    Recipient
}

// PageResult is one page of an order search: the raw orders of the page and
// the continuation cursor. An empty cursor signals the last page of a batch.
type PageResult struct {
	Orders []RawOrder
	Cursor string
}

// LocationSource supplies the merchant's locations.
type LocationSource interface {
	// ActiveLocations returns the active locations of the account.
	ActiveLocations(ctx context.Context) ([]Location, error)
}

// OrderSearcher issues one paged order search call against the remote
// platform. Implementations own throttling, retry, and error translation.
type OrderSearcher interface {
	Search(ctx context.Context, req SearchRequest) (*PageResult, error)
}

// CatalogLookup resolves catalog object ids to catalog item records.
type CatalogLookup interface {
	// Resolve returns the catalog items matching the given variation ids.
	// Ids without a match are simply absent from the result.
	Resolve(ctx context.Context, ids []string) ([]CatalogItem, error)
}
