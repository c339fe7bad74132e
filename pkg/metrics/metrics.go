// Package metrics provides the centralized Prometheus metrics registry for
// the order-sync client. All metrics are defined in their respective packages
// (throttle, budget, catalogcache, collector) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the order-sync client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Budget Metrics (pkg/budget):
//   - ordersync_budget_requests_remaining (Gauge): Requests remaining in the current platform budget window
//   - ordersync_budget_blocks_total (Counter): Requests blocked due to critical budget
//   - ordersync_budget_throttles_total (Counter): Requests delayed due to warning budget
//
// Call Metrics (pkg/throttle):
//   - ordersync_calls_total{endpoint, outcome} (Counter): Outbound calls by endpoint and outcome (ok, error, blocked, cancelled)
//   - ordersync_call_duration_seconds{endpoint} (Histogram): Call duration by endpoint
//   - ordersync_call_errors_total{class} (Counter): Call errors by class (client, server, throttled, network)
//
// Retry Metrics (pkg/throttle):
//   - ordersync_retries_total{error_class} (Counter): Retry attempts by error class
//   - ordersync_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - ordersync_retry_exhausted_total{error_class} (Counter): Calls that exhausted max retries
//
// Catalog Cache Metrics (pkg/catalogcache):
//   - ordersync_catalog_cache_hits_total (Counter): Catalog cache hits
//   - ordersync_catalog_cache_misses_total (Counter): Catalog cache misses
//   - ordersync_catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Collection Metrics (pkg/collector):
//   - ordersync_runs_total{outcome} (Counter): Collection runs by outcome (ok, error, invalid_argument, cancelled, no_locations)
//   - ordersync_run_duration_seconds (Histogram): Collection run duration
//   - ordersync_orders_collected_total (Counter): Orders collected across all runs
//   - ordersync_pages_fetched_total (Counter): Order search pages fetched
//   - ordersync_unmatched_line_items_total (Counter): Line items dropped for lack of a catalog match
//
// Example Prometheus Queries:
//
//   # Catalog Cache Hit Rate
//   sum(rate(ordersync_catalog_cache_hits_total[5m])) /
//   (sum(rate(ordersync_catalog_cache_hits_total[5m])) + sum(rate(ordersync_catalog_cache_misses_total[5m])))
//
//   # Budget Status
//   ordersync_budget_requests_remaining < 20
//
//   # Call Error Rate
//   rate(ordersync_call_errors_total[5m])
//
//   # P95 Call Latency
//   histogram_quantile(0.95, rate(ordersync_call_duration_seconds_bucket[5m]))
//
//   # Orders per Run
//   rate(ordersync_orders_collected_total[1h]) / rate(ordersync_runs_total[1h])
