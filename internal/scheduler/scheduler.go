package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/progress"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

// Status classifies the terminal outcome of one address.
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome is the terminal result of one address. Failed outcomes carry the
// error and the number of fetch attempts consumed.
type Outcome struct {
	Address  tile.Address
	Status   Status
	Attempts int
	Err      error
}

// Summary aggregates the outcomes of a run, keyed by address.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
	Outcomes   map[tile.Address]Outcome
	Elapsed    time.Duration
}

// Total returns the number of addresses the run considered.
func (s *Summary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// Failures returns the failed outcomes sorted by address.
func (s *Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Address, out[j].Address
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return out
}

// Fetcher retrieves the bytes of one tile, returning the attempt count.
type Fetcher interface {
	Tile(ctx context.Context, a tile.Address) ([]byte, int, error)
}

// Options configures a run.
type Options struct {
	// Workers is the number of parallel download workers.
	// Default: 4
	Workers int

	// TTL is the cache freshness window.
	// Default: 168h
	TTL time.Duration

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Run drains the iterator through the worker pool and returns a summary of
// every outcome. Per-tile failures are recorded, not propagated; the
// returned error is non-nil only when the context was cancelled before the
// sequence was fully dispatched.
func Run(ctx context.Context, iter *tile.Iterator, store *cache.Store, fetcher Fetcher, opts Options) (*Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.TTL <= 0 {
		opts.TTL = 168 * time.Hour
	}

	start := time.Now()
	jobs := make(chan tile.Address)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range jobs {
				results <- download(ctx, store, fetcher, addr)
			}
		}()
	}

	// Feed the pool. Fresh addresses settle here without dispatching.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for {
			addr, err := iter.Next()
			if err != nil {
				return
			}
			if store.Freshness(addr, opts.TTL) == cache.Fresh {
				select {
				case results <- Outcome{Address: addr, Status: StatusSkipped}:
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case jobs <- addr:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &Summary{Outcomes: make(map[tile.Address]Outcome)}
	for o := range results {
		summary.Outcomes[o.Address] = o
		switch o.Status {
		case StatusDownloaded:
			summary.Downloaded++
			if opts.Progress != nil {
				opts.Progress.TileDownloaded()
			}
		case StatusSkipped:
			summary.Skipped++
			if opts.Progress != nil {
				opts.Progress.TileSkipped()
			}
		case StatusFailed:
			summary.Failed++
			if opts.Progress != nil {
				opts.Progress.TileFailed()
			}
		}
	}
	summary.Elapsed = time.Since(start)

	return summary, ctx.Err()
}

// download fetches one tile and persists it, turning any error into a
// failed outcome.
func download(ctx context.Context, store *cache.Store, fetcher Fetcher, addr tile.Address) Outcome {
	data, attempts, err := fetcher.Tile(ctx, addr)
	if err != nil {
		return Outcome{Address: addr, Status: StatusFailed, Attempts: attempts, Err: err}
	}
	if _, err := store.Write(addr, data); err != nil {
		return Outcome{
			Address:  addr,
			Status:   StatusFailed,
			Attempts: attempts,
			Err:      fmt.Errorf("persist tile: %w", err),
		}
	}
	return Outcome{Address: addr, Status: StatusDownloaded, Attempts: attempts}
}
