// Package progress provides progress reporting for tile download runs.
//
// This package outputs human-readable progress information, including
// completion counts, download rate, and ETA.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalTiles: scope.Count(),
//	    Workers:    4,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as tiles settle
//	reporter.TileDownloaded()
//
// # Output Format
//
//	[maptiles] Downloading 5836 tiles | Workers: 4
//	[maptiles] Progress: 45.2% | 2638/5836 tiles | 23.1 tiles/s | ETA: 2m 18s
package progress
