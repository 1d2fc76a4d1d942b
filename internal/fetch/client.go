package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

// Common errors.
var (
	ErrNotFound     = errors.New("fetch: tile not found")
	ErrForbidden    = errors.New("fetch: access forbidden")
	ErrUnauthorized = errors.New("fetch: unauthorized")
	ErrServerError  = errors.New("fetch: server error")
	ErrBadPayload   = errors.New("fetch: response is not an image")
)

// Options configures the tile client.
type Options struct {
	// Timeout for individual requests.
	// Default: 15s
	Timeout time.Duration

	// RetryAttempts is the maximum number of retry attempts after the
	// first try.
	// Default: 3
	RetryAttempts int

	// RetryBackoff is the initial backoff duration.
	// Default: 1s
	RetryBackoff time.Duration

	// RetryMaxBackoff is the maximum backoff duration.
	// Default: 30s
	RetryMaxBackoff time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             15 * time.Second,
		RetryAttempts:       3,
		RetryBackoff:        time.Second,
		RetryMaxBackoff:     30 * time.Second,
		MaxIdleConnsPerHost: 100,
	}
}

// Client fetches tiles from a templated tile-server endpoint.
type Client struct {
	template string
	client   *http.Client
	opts     Options
}

// NewClient creates a tile client for a URL template. The template must
// contain {x}, {y}, and {z} placeholders.
func NewClient(template string, opts Options) (*Client, error) {
	for _, ph := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(template, ph) {
			return nil, fmt.Errorf("fetch: URL template missing %s placeholder", ph)
		}
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		template: template,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}, nil
}

// URL returns the request URL for an address.
func (c *Client) URL(a tile.Address) string {
	r := strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(a.X), 10),
		"{y}", strconv.FormatUint(uint64(a.Y), 10),
		"{z}", strconv.FormatUint(uint64(a.Z), 10),
	)
	return r.Replace(c.template)
}

// Tile fetches one tile and returns its bytes along with the number of
// attempts made. Transient failures are retried with exponential backoff;
// permanent failures return immediately.
func (c *Client) Tile(ctx context.Context, a tile.Address) ([]byte, int, error) {
	url := c.URL(a)
	var lastErr error

	for attempt := 0; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, attempt, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, attempt + 1, fmt.Errorf("fetch: create request: %w", err)
		}
		if c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, attempt + 1, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %d %s", ErrServerError, resp.StatusCode, resp.Status)
			continue
		}

		if err := checkStatusCode(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, attempt + 1, err
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("fetch: read body: %w", err)
			continue
		}

		if !looksLikeImage(data) {
			return nil, attempt + 1, fmt.Errorf("%w (%d bytes)", ErrBadPayload, len(data))
		}

		return data, attempt + 1, nil
	}

	return nil, c.opts.RetryAttempts + 1,
		fmt.Errorf("fetch: %s failed after %d attempts: %w", a, c.opts.RetryAttempts+1, lastErr)
}

// wait sleeps for the backoff delay of the given attempt, with jitter.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := backoffDelay(c.opts, attempt)

	// Add jitter: 0.5 to 1.5 of delay
	jitter := time.Duration(float64(delay) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}

// backoffDelay returns the base delay before the given retry attempt
// (attempt >= 1), doubling per attempt and capped at RetryMaxBackoff.
func backoffDelay(opts Options, attempt int) time.Duration {
	delay := opts.RetryBackoff * time.Duration(1<<uint(attempt-1))
	if delay > opts.RetryMaxBackoff || delay <= 0 {
		delay = opts.RetryMaxBackoff
	}
	return delay
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("fetch: unexpected status code: %d", code)
	}
}

// Magic prefixes of the raster formats tile servers serve.
var imageMagics = [][]byte{
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	{0xff, 0xd8, 0xff}, // JPEG
	[]byte("GIF87a"),
	[]byte("GIF89a"),
}

// looksLikeImage sniffs the payload for a known raster image signature.
func looksLikeImage(data []byte) bool {
	for _, magic := range imageMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return true
	}
	return false
}
