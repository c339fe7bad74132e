package platform

import (
	"context"
	"net/http"

	"github.com/merchantkit/order-sync/pkg/collector"
)

// ActiveLocations returns the merchant's active locations. Locations in any
// other status are filtered out before they reach the pipeline.
func (c *Client) ActiveLocations(ctx context.Context) ([]collector.Location, error) {
	var resp listLocationsResponse
	if err := c.do(ctx, "locations.list", http.MethodGet, "/v2/locations", nil, &resp); err != nil {
		return nil, err
	}

	var locations []collector.Location
	for _, loc := range resp.Locations {
		if loc.Status != "ACTIVE" {
			continue
		}
		locations = append(locations, collector.Location{
			ID:     loc.ID,
			Active: true,
		})
	}

	c.logger.Debug().
		Int("total", len(resp.Locations)).
		Int("active", len(locations)).
		Msg("Fetched merchant locations")

	return locations, nil
}
