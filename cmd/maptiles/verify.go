package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/bundle"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
)

// runVerify checks cache coverage for a region without producing an archive.
func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)

	configFile := fs.String("config", "", "YAML configuration file")
	countryCode := fs.String("country", "", "ISO country code for zoom 7+ tiles")
	minZoom := fs.Int("minzoom", -1, "Minimum zoom level")
	maxZoom := fs.Int("maxzoom", -1, "Maximum zoom level")
	cacheDir := fs.String("cache", "", "Cache root directory")
	bboxFile := fs.String("bbox-file", "", "JSON file with additional country bounding boxes")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: maptiles verify [options]

Check whether every tile expected for the region is present in the cache.
Exits 0 when coverage is complete, 5 when tiles are missing.

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
	if *countryCode != "" {
		cfg.Country = *countryCode
	}
	if *minZoom >= 0 {
		cfg.MinZoom = *minZoom
	}
	if *maxZoom >= 0 {
		cfg.MaxZoom = *maxZoom
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}

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

	result, err := bundle.Verify(context.Background(), store, scopes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	printMissing(result)

	if !result.Complete {
		return ExitIncomplete
	}
	return ExitSuccess
}
