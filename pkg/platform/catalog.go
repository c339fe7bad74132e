package platform

import (
	"context"
	"net/http"

	"github.com/merchantkit/order-sync/pkg/collector"
)

// Resolve returns the catalog items matching the given variation ids. With a
// cache configured the platform is only asked for the ids the cache misses;
// cache failures degrade to a direct lookup.
func (c *Client) Resolve(ctx context.Context, ids []string) ([]collector.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cached := map[string]collector.CatalogItem{}
	missing := ids

	if c.cache != nil {
		found, miss, err := c.cache.GetMany(ctx, ids)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Catalog cache lookup failed, falling back to platform")
		} else {
			cached = found
			missing = miss
		}
	}

	if len(missing) > 0 {
		req := batchRetrieveCatalogRequest{ObjectIDs: missing}

		var resp batchRetrieveCatalogResponse
		if err := c.do(ctx, "catalog.batch-retrieve", http.MethodPost, "/v2/catalog/batch-retrieve", req, &resp); err != nil {
			return nil, err
		}

		var fetched []collector.CatalogItem
		for _, obj := range resp.Objects {
			item, ok := mapCatalogObject(obj)
			if !ok {
				continue
			}
			cached[item.VariationID] = item
			fetched = append(fetched, item)
		}

		if c.cache != nil && len(fetched) > 0 {
			if err := c.cache.SetMany(ctx, fetched); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to store catalog items in cache")
			}
		}
	}

	// Preserve the requested id order in the result
	var items []collector.CatalogItem
	for _, id := range ids {
		if item, ok := cached[id]; ok {
			items = append(items, item)
		}
	}

	return items, nil
}
