package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for collection runs.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_runs_total",
		Help: "Total collection runs by outcome",
	}, []string{"outcome"})

	ordersCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordersync_orders_collected_total",
		Help: "Total normalized orders produced across all collection runs",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ordersync_run_duration_seconds",
		Help:    "Collection run duration in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})
)

// Config holds the pipeline configuration.
type Config struct {
	// PageSize is the maximum number of orders per search page.
	PageSize int

	// OnUnmatchedLineItem observes line items dropped during enrichment.
	// Nil means drops are only counted and logged.
	OnUnmatchedLineItem UnmatchedLineItemFunc
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: 100,
	}
}

// Pipeline orchestrates one order collection run: location fetch, batching,
// page walking, and enrichment.
type Pipeline struct {
	locations LocationSource
	searcher  OrderSearcher
	catalog   CatalogLookup
	config    Config
	logger    zerolog.Logger
}

// New creates a collection pipeline.
func New(locations LocationSource, searcher OrderSearcher, catalog CatalogLookup, cfg Config) (*Pipeline, error) {
	if locations == nil {
		return nil, fmt.Errorf("location source is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("order searcher is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}

	return &Pipeline{
		locations: locations,
		searcher:  searcher,
		catalog:   catalog,
		config:    cfg,
		logger:    log.With().Str("component", "collector").Logger(),
	}, nil
}

// Collect runs one collection for the given window and returns the full
// normalized order sequence: all batches' pages concatenated in fetch order,
// without cross-batch dedup or re-sort. Any failure aborts the entire run;
// no partial result is returned.
func (p *Pipeline) Collect(ctx context.Context, window TimeWindow) ([]NormalizedOrder, error) {
	runMark := uuid.NewString()
	logger := p.logger.With().Str("mark", runMark).Logger()

	startTime := time.Now()
	defer func() {
		runDuration.Observe(time.Since(startTime).Seconds())
	}()

	if !window.Valid() {
		runsTotal.WithLabelValues("invalid_argument").Inc()
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidWindow,
			window.StartUTC.Format(time.RFC3339), window.EndUTC.Format(time.RFC3339))
	}

	// A pre-cancelled run issues no calls at all
	if err := ctx.Err(); err != nil {
		runsTotal.WithLabelValues("cancelled").Inc()
		return nil, fmt.Errorf("collection cancelled before start: %w", err)
	}

	logger.Info().
		Time("window_start", window.StartUTC).
		Time("window_end", window.EndUTC).
		Msg("Collection run started")

	locations, err := p.locations.ActiveLocations(ctx)
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Msg("Fetching active locations failed")
		return nil, fmt.Errorf("fetch active locations: %w", err)
	}
	if len(locations) == 0 {
		runsTotal.WithLabelValues("no_locations").Inc()
		logger.Error().Msg("Account has no active locations")
		return nil, ErrNoActiveLocations
	}

	enricher := NewEnricher(p.catalog, p.config.OnUnmatchedLineItem, logger)
	walker := NewPageWalker(p.searcher, enricher, p.config.PageSize, logger)

	var collected []NormalizedOrder
	batch := 0
	for chunk := range Batches(locations, MaxLocationBatchSize) {
		batch++
		batchLogger := logger.With().Int("batch", batch).Logger()

		batchLogger.Debug().
			Int("locations", len(chunk)).
			Msg("Walking location batch")

		orders, err := walker.Walk(ctx, locationIDs(chunk), window)
		if err != nil {
			runsTotal.WithLabelValues("error").Inc()
			batchLogger.Error().Err(err).Msg("Location batch failed, aborting run")
			return nil, fmt.Errorf("batch %d: %w", batch, err)
		}

		collected = append(collected, orders...)
	}

	runsTotal.WithLabelValues("ok").Inc()
	ordersCollectedTotal.Add(float64(len(collected)))

	logger.Info().
		Int("batches", batch).
		Int("orders", len(collected)).
		Dur("duration", time.Since(startTime)).
		Msg("Collection run finished")

	return collected, nil
}
