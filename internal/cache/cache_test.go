package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "SG")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestPathPartitioning(t *testing.T) {
	s := newTestStore(t)

	world, err := s.Path(tile.Address{Z: 3, X: 4, Y: 5})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if !strings.HasSuffix(filepath.ToSlash(world), "/world/3/4/5.png") {
		t.Errorf("world path = %q", world)
	}

	country, err := s.Path(tile.Address{Z: 7, X: 100, Y: 63})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if !strings.HasSuffix(filepath.ToSlash(country), "/sg/7/100/63.png") {
		t.Errorf("country path = %q", country)
	}
}

func TestPathRequiresCountryAboveWorldZoom(t *testing.T) {
	s, err := NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Path(tile.Address{Z: 7, X: 0, Y: 0}); err == nil {
		t.Error("expected error for zoom 7 without country code")
	}
	if _, err := s.Path(tile.Address{Z: 6, X: 0, Y: 0}); err != nil {
		t.Errorf("zoom 6 should not need a country code: %v", err)
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	s := newTestStore(t)
	addr := tile.Address{Z: 7, X: 100, Y: 63}
	data := []byte("tile-bytes")

	entry, err := s.Write(addr, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if entry.Size != int64(len(data)) {
		t.Errorf("entry size = %d, want %d", entry.Size, len(data))
	}

	got, err := s.Read(addr)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Read = %q, want %q", got, data)
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := newTestStore(t)
	addr := tile.Address{Z: 2, X: 1, Y: 1}

	if _, err := s.Write(addr, []byte("old")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.Write(addr, []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read(addr)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Read = %q, want %q", got, "new")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	addr := tile.Address{Z: 1, X: 0, Y: 0}
	if _, err := s.Write(addr, []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path, _ := s.Path(addr)
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tile-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestReadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Read(tile.Address{Z: 4, X: 2, Y: 2}); err != ErrMissing {
		t.Errorf("Read missing entry: %v, want ErrMissing", err)
	}
}

func TestFreshnessLifecycle(t *testing.T) {
	s := newTestStore(t)
	addr := tile.Address{Z: 5, X: 10, Y: 20}
	ttl := time.Hour

	if got := s.Freshness(addr, ttl); got != Missing {
		t.Errorf("before write: %v, want missing", got)
	}

	entry, err := s.Write(addr, []byte("tile"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.Freshness(addr, ttl); got != Fresh {
		t.Errorf("after write: %v, want fresh", got)
	}

	// Backdate the entry past the TTL.
	old := time.Now().Add(-ttl - time.Minute)
	if err := os.Chtimes(entry.Path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if got := s.Freshness(addr, ttl); got != Stale {
		t.Errorf("after TTL: %v, want stale", got)
	}

	// Just inside the TTL.
	recent := time.Now().Add(-ttl + time.Minute)
	if err := os.Chtimes(entry.Path, recent, recent); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if got := s.Freshness(addr, ttl); got != Fresh {
		t.Errorf("inside TTL: %v, want fresh", got)
	}
}

func TestZeroByteEntryIsMissing(t *testing.T) {
	s := newTestStore(t)
	addr := tile.Address{Z: 3, X: 1, Y: 1}

	path, _ := s.Path(addr)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if got := s.Freshness(addr, time.Hour); got != Missing {
		t.Errorf("zero-byte entry: %v, want missing", got)
	}
	if _, err := s.Read(addr); err != ErrMissing {
		t.Errorf("Read zero-byte entry: %v, want ErrMissing", err)
	}
}

func TestConcurrentWritesDistinctAddresses(t *testing.T) {
	s := newTestStore(t)
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := tile.Address{Z: 7, X: uint32(i), Y: uint32(i)}
			data := bytes.Repeat([]byte{byte(i)}, 128)
			if _, err := s.Write(addr, data); err != nil {
				t.Errorf("Write %s: %v", addr, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		addr := tile.Address{Z: 7, X: uint32(i), Y: uint32(i)}
		data, err := s.Read(addr)
		if err != nil {
			t.Fatalf("Read %s: %v", addr, err)
		}
		if len(data) != 128 || data[0] != byte(i) {
			t.Errorf("corrupt entry at %s", addr)
		}
	}
}

func TestWalkScoped(t *testing.T) {
	s := newTestStore(t)

	written := []tile.Address{
		{Z: 0, X: 0, Y: 0},
		{Z: 6, X: 31, Y: 31},
		{Z: 7, X: 100, Y: 63},
		{Z: 8, X: 201, Y: 126},
	}
	for _, a := range written {
		if _, err := s.Write(a, []byte("tile")); err != nil {
			t.Fatalf("Write %s: %v", a, err)
		}
	}

	scope := tile.Scope{Box: tile.World(), MinZoom: 0, MaxZoom: 7}
	seen := make(map[tile.Address]bool)
	err := s.Walk(scope, func(e Entry) error {
		seen[e.Address] = true
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	for _, a := range written[:3] {
		if !seen[a] {
			t.Errorf("Walk missed %s", a)
		}
	}
	if seen[written[3]] {
		t.Errorf("Walk included out-of-scope address %s", written[3])
	}
}

func TestWalkSkipsForeignFiles(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Write(tile.Address{Z: 1, X: 0, Y: 1}, []byte("tile")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Stray file that does not parse as an address.
	if err := os.WriteFile(filepath.Join(s.Root(), "world", "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	count := 0
	scope := tile.Scope{Box: tile.World(), MinZoom: 0, MaxZoom: 6}
	if err := s.Walk(scope, func(Entry) error { count++; return nil }); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if count != 1 {
		t.Errorf("Walk visited %d entries, want 1", count)
	}
}
