package bundle

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

// Archive entries all carry the same timestamp so repeated assembly of an
// unchanged cache is byte-stable.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result reports how an assembly or verification compared to the expected
// address set.
type Result struct {
	Complete bool
	Written  int
	Expected int
	Missing  []tile.Address
}

// Assemble writes every cached tile inside the scopes to w as a zip
// archive. Tiles expected by the scopes but absent from the cache are
// reported in the result, not treated as errors.
func Assemble(ctx context.Context, store *cache.Store, scopes []tile.Scope, w io.Writer) (*Result, error) {
	entries, result, err := collect(ctx, store, scopes)
	if err != nil {
		return nil, err
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return nil, err
		}
		data, err := store.Read(e.Address)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("bundle: read %s: %w", e.Address, err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Address.ArchivePath(),
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		})
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("bundle: create entry %s: %w", e.Address, err)
		}
		if _, err := fw.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("bundle: write entry %s: %w", e.Address, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("bundle: finalize archive: %w", err)
	}

	result.Written = len(entries)
	return result, nil
}

// Verify reports completeness of the cache against the scopes without
// writing an archive.
func Verify(ctx context.Context, store *cache.Store, scopes []tile.Scope) (*Result, error) {
	entries, result, err := collect(ctx, store, scopes)
	if err != nil {
		return nil, err
	}
	result.Written = len(entries)
	return result, nil
}

// collect walks the cache for each scope and splits the expected address
// set into present entries and missing addresses. Entries come back sorted
// by address for deterministic archive layout.
func collect(ctx context.Context, store *cache.Store, scopes []tile.Scope) ([]cache.Entry, *Result, error) {
	expected := make(map[tile.Address]bool)
	for _, scope := range scopes {
		it := scope.Addresses()
		for {
			addr, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, nil, fmt.Errorf("bundle: enumerate scope: %w", err)
			}
			expected[addr] = false
		}
	}

	var entries []cache.Entry
	for _, scope := range scopes {
		err := store.Walk(scope, func(e cache.Entry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if seen, ok := expected[e.Address]; ok && !seen {
				expected[e.Address] = true
				entries = append(entries, e)
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return addressLess(entries[i].Address, entries[j].Address)
	})

	result := &Result{Expected: len(expected)}
	for addr, seen := range expected {
		if !seen {
			result.Missing = append(result.Missing, addr)
		}
	}
	sort.Slice(result.Missing, func(i, j int) bool {
		return addressLess(result.Missing[i], result.Missing[j])
	})
	result.Complete = len(result.Missing) == 0

	return entries, result, nil
}

func addressLess(a, b tile.Address) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
