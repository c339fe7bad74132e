package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/merchantkit/order-sync/pkg/collector"
)

// Search issues one paged order search call for a single location batch.
// Cursor handling stays with the caller; this method fetches exactly one page.
func (c *Client) Search(ctx context.Context, req collector.SearchRequest) (*collector.PageResult, error) {
	wireReq := searchOrdersRequest{
		LocationIDs: req.LocationIDs,
		Cursor:      req.Cursor,
		Limit:       req.PageSize,
	}
	wireReq.Query.Filter.UpdatedAt = timeRangeDTO{
		StartAt: req.UpdatedWindow.StartUTC.Format(time.RFC3339),
		EndAt:   req.UpdatedWindow.EndUTC.Format(time.RFC3339),
	}
	wireReq.Query.Sort.SortField = "UPDATED_AT"
	wireReq.Query.Sort.SortOrder = "ASC"

	var resp searchOrdersResponse
	if err := c.do(ctx, "orders.search", http.MethodPost, "/v2/orders/search", wireReq, &resp); err != nil {
		return nil, err
	}

	result := &collector.PageResult{
		Cursor: resp.Cursor,
	}
	for _, dto := range resp.Orders {
		order, err := mapOrder(dto)
		if err != nil {
			return nil, err
		}
		result.Orders = append(result.Orders, order)
	}

	return result, nil
}
