package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

// WorldMaxZoom is the last zoom level stored in the world partition.
// Higher zooms go to the per-country partition.
const WorldMaxZoom = 6

// ErrMissing is returned by Read when no usable entry exists.
var ErrMissing = errors.New("cache: entry missing")

// Freshness classifies a cache entry relative to a TTL.
type Freshness int

const (
	Missing Freshness = iota
	Stale
	Fresh
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "missing"
	}
}

// Entry is one cached tile on disk.
type Entry struct {
	Address tile.Address
	Path    string
	ModTime time.Time
	Size    int64
}

// Store maps tile addresses to files under a root directory. The country
// code selects the partition for zoom levels above WorldMaxZoom and must be
// set before such addresses are written or read.
type Store struct {
	root    string
	country string
}

// NewStore opens (creating if needed) a tile cache rooted at root. The
// country code may be empty when only world-zoom tiles are used.
func NewStore(root, country string) (*Store, error) {
	if root == "" {
		return nil, errors.New("cache: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create root: %w", err)
	}
	return &Store{root: root, country: strings.ToLower(country)}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// Partition returns the partition directory name for the given zoom.
func (s *Store) Partition(zoom uint32) string {
	if zoom <= WorldMaxZoom {
		return "world"
	}
	return s.country
}

// Path returns the file path for an address. Addresses above WorldMaxZoom
// require the store's country code to be set.
func (s *Store) Path(a tile.Address) (string, error) {
	part := s.Partition(a.Z)
	if part == "" {
		return "", fmt.Errorf("cache: no country partition configured for zoom %d", a.Z)
	}
	return filepath.Join(s.root, part,
		strconv.FormatUint(uint64(a.Z), 10),
		strconv.FormatUint(uint64(a.X), 10),
		strconv.FormatUint(uint64(a.Y), 10)+".png"), nil
}

// Freshness reports whether the entry for an address can be reused within
// the TTL. Zero-byte entries count as Missing.
func (s *Store) Freshness(a tile.Address, ttl time.Duration) Freshness {
	path, err := s.Path(a)
	if err != nil {
		return Missing
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return Missing
	}
	if time.Since(info.ModTime()) > ttl {
		return Stale
	}
	return Fresh
}

// Write persists tile bytes for an address, replacing any prior entry. The
// bytes land under a temp name first and are renamed into place so a
// concurrent reader never sees partial content.
func (s *Store) Write(a tile.Address, data []byte) (Entry, error) {
	path, err := s.Path(a)
	if err != nil {
		return Entry{}, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("cache: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tile-*")
	if err != nil {
		return Entry{}, fmt.Errorf("cache: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Entry{}, fmt.Errorf("cache: write %s: %w", a, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Entry{}, fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return Entry{}, fmt.Errorf("cache: chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return Entry{}, fmt.Errorf("cache: rename %s: %w", a, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("cache: stat %s: %w", a, err)
	}
	return Entry{Address: a, Path: path, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Read returns the cached bytes for an address, or ErrMissing when no
// usable entry exists.
func (s *Store) Read(a tile.Address) ([]byte, error) {
	path, err := s.Path(a)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", a, err)
	}
	if len(data) == 0 {
		return nil, ErrMissing
	}
	return data, nil
}

// Walk visits every cache entry inside the scope, in directory order.
// Returning an error from fn stops the walk.
func (s *Store) Walk(scope tile.Scope, fn func(Entry) error) error {
	for _, part := range s.partitions(scope) {
		base := filepath.Join(s.root, part)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("cache: walk %s: %w", base, err)
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return fmt.Errorf("cache: walk %s: %w", base, err)
			}
			addr, ok := parseEntryPath(rel)
			if !ok || !scope.Contains(addr) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("cache: stat %s: %w", path, err)
			}
			if info.Size() == 0 {
				return nil
			}
			return fn(Entry{Address: addr, Path: path, ModTime: info.ModTime(), Size: info.Size()})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// partitions returns the partition directories a scope's zoom range spans.
func (s *Store) partitions(scope tile.Scope) []string {
	var parts []string
	if scope.MinZoom <= WorldMaxZoom {
		parts = append(parts, "world")
	}
	if scope.MaxZoom > WorldMaxZoom && s.country != "" {
		parts = append(parts, s.country)
	}
	return parts
}

// parseEntryPath parses a z/x/y.png relative path into an address.
func parseEntryPath(rel string) (tile.Address, bool) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 || !strings.HasSuffix(parts[2], ".png") {
		return tile.Address{}, false
	}
	z, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return tile.Address{}, false
	}
	x, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return tile.Address{}, false
	}
	y, err := strconv.ParseUint(strings.TrimSuffix(parts[2], ".png"), 10, 32)
	if err != nil {
		return tile.Address{}, false
	}
	addr := tile.Address{Z: uint32(z), X: uint32(x), Y: uint32(y)}
	if !addr.Valid() {
		return tile.Address{}, false
	}
	return addr, true
}
