// Package fetch retrieves individual map tiles over HTTP.
//
// This package handles:
//   - URL templating ({x}, {y}, {z} placeholders)
//   - Connection pooling for parallel workers
//   - Retry with exponential backoff and jitter
//   - Transient vs permanent failure classification
//   - Image payload sniffing
//
// Transient failures (network errors, timeouts, HTTP 5xx) are retried up to
// the configured attempt budget. Permanent failures (HTTP 4xx, non-image
// payloads) return immediately. The client performs no caching; writing
// fetched bytes anywhere is the caller's concern.
//
// # Usage
//
//	client, err := fetch.NewClient("https://tiles.example.com/{z}/{x}/{y}.png", fetch.DefaultOptions())
//	data, attempts, err := client.Tile(ctx, addr)
package fetch
