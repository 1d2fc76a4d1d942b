package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalTiles is the number of tiles the run will consider.
	TotalTiles int

	// Workers is the number of parallel workers.
	Workers int

	// Country is an optional label shown in the header.
	Country string

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu         sync.Mutex
	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	startTime  time.Time
	lastUpdate time.Time
	lastDone   int64
	stopCh     chan struct{}
	stopped    bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	label := ""
	if r.opts.Country != "" {
		label = " | Country: " + r.opts.Country
	}
	fmt.Fprintf(r.opts.Output, "[maptiles] Downloading %d tiles | Workers: %d%s\n",
		r.opts.TotalTiles, r.opts.Workers, label)

	go r.updateLoop()
}

// Stop stops the progress reporter.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// TileDownloaded records one freshly fetched tile.
func (r *Reporter) TileDownloaded() {
	r.downloaded.Add(1)
}

// TileSkipped records one tile served from cache.
func (r *Reporter) TileSkipped() {
	r.skipped.Add(1)
}

// TileFailed records one tile that exhausted its retries.
func (r *Reporter) TileFailed() {
	r.failed.Add(1)
}

func (r *Reporter) done() int64 {
	return r.downloaded.Load() + r.skipped.Load() + r.failed.Load()
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	now := time.Now()
	done := r.done()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	rate := float64(done-r.lastDone) / elapsed

	r.lastUpdate = now
	r.lastDone = done

	var percent float64
	eta := "calculating..."
	if r.opts.TotalTiles > 0 {
		percent = float64(done) / float64(r.opts.TotalTiles) * 100
		if rate > 0 {
			remaining := float64(int64(r.opts.TotalTiles) - done)
			eta = formatDuration(time.Duration(remaining / rate * float64(time.Second)))
		}
	}

	fmt.Fprintf(r.opts.Output, "\r[maptiles] Progress: %.1f%% | %d/%d tiles | %.1f tiles/s | ETA: %s    ",
		percent, done, r.opts.TotalTiles, rate, eta)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	duration := time.Since(r.startTime)
	done := r.done()
	rate := float64(done) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[maptiles] Finished %d/%d tiles in %s (%.1f tiles/s)    \n",
		done, r.opts.TotalTiles, formatDuration(duration), rate)
	fmt.Fprintf(r.opts.Output, "[maptiles] Downloaded: %d | From cache: %d | Failed: %d\n",
		r.downloaded.Load(), r.skipped.Load(), r.failed.Load())
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
