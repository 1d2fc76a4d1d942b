// Package bundle assembles cached tiles into a portable zip archive.
//
// The archive holds entries at the canonical z/x/y.png path, flattening the
// cache's world/country partition split. Display clients address tiles by
// zoom and coordinates only.
//
// Assembly never fetches: it packages whatever the cache holds for the
// requested scopes and reports completeness against the expected address
// set. A Partial result lists exactly the missing addresses so the caller
// can re-run the downloader.
//
// Entry timestamps are pinned so assembling an unchanged cache twice yields
// byte-identical archives. Publish copies a finished archive to object
// storage through gocloud.dev/blob.
package bundle
