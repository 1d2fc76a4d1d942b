// Package cache persists map tiles in a zoom-partitioned directory tree
// with time-based invalidation.
//
// # Layout
//
//	{root}/world/{z}/{x}/{y}.png      zoom 0-6
//	{root}/{country}/{z}/{x}/{y}.png  zoom 7 and up
//
// The partition split is a naming convention only; freshness and write
// semantics are identical in both partitions. Display clients read this
// tree directly, so paths contain no escaping or sidecar files.
//
// # Freshness
//
// An entry is Fresh while its modification time is within the TTL, Stale
// once it ages out, and Missing when absent. Zero-byte files are reported
// Missing so a truncated tile is never reused.
//
// # Atomicity
//
// Writes go to a temp file in the destination directory and are renamed
// into place, so readers never observe partial content. Paths are unique
// per address; concurrent writers to the same address are resolved
// last-writer-wins by the rename.
package cache
