package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/config"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/fetch"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/progress"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/scheduler"
)

// runDownload enumerates the requested region and fetches every stale or
// missing tile into the local cache through a bounded worker pool.
func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	configFile := fs.String("config", "", "YAML configuration file")
	countryCode := fs.String("country", "", "ISO country code for zoom 7+ tiles (e.g. SG, US)")
	minZoom := fs.Int("minzoom", -1, "Minimum zoom level")
	maxZoom := fs.Int("maxzoom", -1, "Maximum zoom level")
	workers := fs.Int("workers", 0, "Number of parallel downloads")
	urlTemplate := fs.String("url", "", "Tile server URL template with {x}, {y}, {z} placeholders")
	cacheDir := fs.String("cache", "", "Cache root directory")
	ttl := fs.Duration("ttl", 0, "Cache entry time-to-live")
	showProgress := fs.Bool("progress", false, "Show progress output")
	bboxFile := fs.String("bbox-file", "", "JSON file with additional country bounding boxes")
	retryAttempts := fs.Int("retry-attempts", 0, "Max retry attempts per tile")
	retryBackoff := fs.Duration("retry-backoff", 0, "Initial retry backoff")
	retryMaxBackoff := fs.Duration("retry-max-backoff", 0, "Max retry backoff")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: maptiles download [options]

Fetch map tiles covering a region into the local cache. Zoom levels 0-6
cover the whole world; zoom 7 and up require -country. Tiles already fresh
in the cache are skipped.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configFile)
	if code != ExitSuccess {
		return code
	}
	applyFlags(&cfg, *countryCode, *minZoom, *maxZoom, *workers, *urlTemplate,
		*cacheDir, *ttl, *showProgress, *retryAttempts, *retryBackoff, *retryMaxBackoff)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	resolver, err := newResolver(*bboxFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	scopes, err := buildScopes(cfg, resolver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	store, err := cache.NewStore(cfg.CacheDir, cfg.Country)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.RetryAttempts = cfg.Retry.Attempts
	fetchOpts.RetryBackoff = cfg.Retry.Backoff
	fetchOpts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	fetchOpts.MaxIdleConnsPerHost = cfg.Workers * 2
	fetchOpts.UserAgent = "maptiles/1.0"
	client, err := fetch.NewClient(cfg.URL, fetchOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	printLegalNotice()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[maptiles] Received interrupt, shutting down...")
		cancel()
	}()

	failed := 0
	for _, scope := range scopes {
		total := scope.Count()
		fmt.Fprintf(os.Stderr, "[maptiles] Zoom %d-%d: %d tiles\n", scope.MinZoom, scope.MaxZoom, total)
		counts := scope.ZoomCounts()
		for z := scope.MinZoom; z <= scope.MaxZoom; z++ {
			fmt.Fprintf(os.Stderr, "[maptiles]   zoom %2d: %d tiles\n", z, counts[z])
		}

		var reporter *progress.Reporter
		if cfg.Progress {
			reporter = progress.NewReporter(progress.Options{
				TotalTiles: total,
				Workers:    cfg.Workers,
				Country:    cfg.Country,
			})
			reporter.Start()
		}

		summary, runErr := scheduler.Run(ctx, scope.Addresses(), store, client, scheduler.Options{
			Workers:  cfg.Workers,
			TTL:      cfg.TTL,
			Progress: reporter,
		})
		if reporter != nil {
			reporter.Stop()
		}

		printSummary(summary)
		failed += summary.Failed

		if runErr != nil {
			fmt.Fprintln(os.Stderr, "[maptiles] Run interrupted; cached tiles remain valid")
			return ExitGeneralError
		}
	}

	if failed > 0 {
		return ExitIncomplete
	}
	return ExitSuccess
}

// loadConfig reads the config file (when given) and applies environment
// overrides on top.
func loadConfig(path string) (config.Config, int) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return cfg, ExitConfigError
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, ExitConfigError
	}
	return cfg, ExitSuccess
}

// applyFlags overlays explicit flag values onto the config. Unset flags
// keep their config/env values.
func applyFlags(cfg *config.Config, country string, minZoom, maxZoom, workers int,
	url, cacheDir string, ttl time.Duration, showProgress bool,
	retryAttempts int, retryBackoff, retryMaxBackoff time.Duration) {

	if country != "" {
		cfg.Country = country
	}
	if minZoom >= 0 {
		cfg.MinZoom = minZoom
	}
	if maxZoom >= 0 {
		cfg.MaxZoom = maxZoom
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if url != "" {
		cfg.URL = url
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if ttl > 0 {
		cfg.TTL = ttl
	}
	if showProgress {
		cfg.Progress = true
	}
	if retryAttempts > 0 {
		cfg.Retry.Attempts = retryAttempts
	}
	if retryBackoff > 0 {
		cfg.Retry.Backoff = retryBackoff
	}
	if retryMaxBackoff > 0 {
		cfg.Retry.MaxBackoff = retryMaxBackoff
	}
}

// printSummary writes the per-run counts and any failed addresses.
func printSummary(s *scheduler.Summary) {
	fmt.Fprintf(os.Stderr, "[maptiles] Done in %s: %d downloaded, %d from cache, %d failed\n",
		s.Elapsed.Round(time.Millisecond), s.Downloaded, s.Skipped, s.Failed)

	failures := s.Failures()
	const maxListed = 20
	for i, f := range failures {
		if i == maxListed {
			fmt.Fprintf(os.Stderr, "[maptiles]   ... and %d more\n", len(failures)-maxListed)
			break
		}
		fmt.Fprintf(os.Stderr, "[maptiles]   FAILED %s after %d attempts: %v\n", f.Address, f.Attempts, f.Err)
	}
}

func printLegalNotice() {
	fmt.Fprintln(os.Stderr, `[maptiles] Tile imagery is subject to the tile provider's terms of service.
[maptiles] Download for personal/offline use only and keep provider attribution.`)
}
