// Package scheduler fans tile downloads out to a bounded worker pool.
//
// This package coordinates the address enumerator, the cache store, and the
// tile fetcher. For each enumerated address it consults cache freshness:
// fresh entries are skipped without touching the network, stale or missing
// entries become jobs for the pool. Workers fetch and write tiles
// independently; a failed tile is recorded and never aborts its siblings.
//
// # Worker Pool
//
// The pool size bounds peak concurrent connections regardless of how many
// addresses the enumerator produces. Outcomes complete in any order and are
// aggregated into a Summary keyed by address.
//
// # Cancellation
//
// Cancelling the context stops dispatching new jobs; in-flight jobs finish
// or time out, and tiles already written stay valid.
package scheduler
