package collector

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ordersync_pages_fetched_total",
	Help: "Total order search pages fetched across all collection runs",
})

// PageWalker walks the cursor-paged order search for one location batch and
// enriches every returned order.
type PageWalker struct {
	searcher OrderSearcher
	enricher *Enricher
	pageSize int
	logger   zerolog.Logger
}

// NewPageWalker creates a page walker.
func NewPageWalker(searcher OrderSearcher, enricher *Enricher, pageSize int, logger zerolog.Logger) *PageWalker {
	return &PageWalker{
		searcher: searcher,
		enricher: enricher,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Walk fetches all pages for one location batch, following the continuation
// cursor until the platform returns none, and returns the enriched orders in
// fetch order. Any fetch or enrichment failure terminates the walk
// immediately; remaining cursors are not visited.
func (w *PageWalker) Walk(ctx context.Context, locationIDs []string, window TimeWindow) ([]NormalizedOrder, error) {
	var collected []NormalizedOrder
	cursor := ""
	page := 0

	for {
		req := SearchRequest{
			LocationIDs:   locationIDs,
			UpdatedWindow: window,
			Cursor:        cursor,
			PageSize:      w.pageSize,
		}

		result, err := w.searcher.Search(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page+1, err)
		}
		if result == nil {
			return nil, fmt.Errorf("search page %d: empty result", page+1)
		}

		page++
		pagesFetchedTotal.Inc()

		w.logger.Debug().
			Int("page", page).
			Int("orders", len(result.Orders)).
			Bool("has_cursor", result.Cursor != "").
			Msg("Fetched order search page")

		for _, raw := range result.Orders {
			order, err := w.enricher.Enrich(ctx, raw)
			if err != nil {
				return nil, fmt.Errorf("enrich order %s: %w", raw.ID, err)
			}
			collected = append(collected, order)
		}

		if result.Cursor == "" {
			return collected, nil
		}
		cursor = result.Cursor
	}
}
