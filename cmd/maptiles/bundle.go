package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/bundle"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
)

// runBundle assembles cached tiles for a region into one zip archive and
// optionally publishes it to object storage.
func runBundle(args []string) int {
	fs := flag.NewFlagSet("bundle", flag.ExitOnError)

	configFile := fs.String("config", "", "YAML configuration file")
	countryCode := fs.String("country", "", "ISO country code for zoom 7+ tiles")
	minZoom := fs.Int("minzoom", -1, "Minimum zoom level")
	maxZoom := fs.Int("maxzoom", -1, "Maximum zoom level")
	cacheDir := fs.String("cache", "", "Cache root directory")
	output := fs.String("output", "map_bundle.zip", "Output archive path")
	bucketURL := fs.String("bucket", "", "Publish the archive to this bucket URL (s3://, gs://, file://)")
	object := fs.String("object", "", "Object key for the published archive (default: archive file name)")
	bboxFile := fs.String("bbox-file", "", "JSON file with additional country bounding boxes")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: maptiles bundle [options]

Assemble cached tiles into a single zip archive with entries at z/x/y.png.
The archive is reported Partial when tiles expected for the region are not
in the cache; run 'maptiles download' first to fill the gaps.

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating archive: %v\n", err)
		return ExitStorageError
	}

	result, err := bundle.Assemble(ctx, store, scopes, f)
	if err != nil {
		f.Close()
		os.Remove(*output)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing archive: %v\n", err)
		return ExitStorageError
	}

	info, err := os.Stat(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	fmt.Fprintf(os.Stderr, "[maptiles] Created %s with %d tiles (%.2f MB)\n",
		*output, result.Written, float64(info.Size())/1024/1024)

	printMissing(result)

	if *bucketURL != "" {
		key := *object
		if key == "" {
			key = *output
		}
		if err := bundle.Publish(ctx, *bucketURL, key, *output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitStorageError
		}
		fmt.Fprintf(os.Stderr, "[maptiles] Published to %s/%s\n", *bucketURL, key)
	}

	if !result.Complete {
		return ExitIncomplete
	}
	return ExitSuccess
}

// printMissing lists addresses expected for the scope but absent from the
// cache.
func printMissing(result *bundle.Result) {
	if result.Complete {
		fmt.Fprintf(os.Stderr, "[maptiles] Status: COMPLETE (%d/%d tiles)\n", result.Written, result.Expected)
		return
	}

	fmt.Fprintf(os.Stderr, "[maptiles] Status: PARTIAL (%d/%d tiles, %d missing)\n",
		result.Written, result.Expected, len(result.Missing))

	const maxListed = 20
	for i, addr := range result.Missing {
		if i == maxListed {
			fmt.Fprintf(os.Stderr, "[maptiles]   ... and %d more\n", len(result.Missing)-maxListed)
			break
		}
		fmt.Fprintf(os.Stderr, "[maptiles]   missing %s\n", addr)
	}
}
