// Package collector implements the order collection pipeline: it pulls order
// records for a time window from the remote commerce platform, location batch
// by location batch, page by page, and enriches each raw order with catalog
// line-item detail.
//
// The pipeline is strictly sequential: batches are walked in input order and
// pages within a batch in fetch order, so the produced order sequence is
// deterministic and the shared outbound rate budget is never violated by
// concurrent fetches. Callers may run independent Collect invocations
// concurrently; the pipeline keeps no cross-invocation mutable state.
//
// Remote access is abstracted behind three narrow interfaces (LocationSource,
// OrderSearcher, CatalogLookup) so the fetch steps stay swappable in tests.
// Throttling and retry discipline belong to the implementations of those
// interfaces, not to this package: a retried-then-succeeded fetch looks like
// plain success here, and any surfaced error aborts the whole run without a
// partial result.
package collector
