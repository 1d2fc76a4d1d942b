package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/cache"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/config"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/country"
	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

// buildScopes splits the configured zoom range into the world scope (zoom
// 0-6, full Web-Mercator extent) and, when a country is configured, the
// country scope (zoom 7 and up, country bounding box). Zoom levels above
// the world range are reachable only with a country code.
func buildScopes(cfg config.Config, resolver *country.Resolver) ([]tile.Scope, error) {
	var scopes []tile.Scope

	worldMax := min(cfg.MaxZoom, cache.WorldMaxZoom)
	if cfg.MinZoom <= worldMax {
		scopes = append(scopes, tile.Scope{
			Box:     tile.World(),
			MinZoom: uint32(cfg.MinZoom),
			MaxZoom: uint32(worldMax),
		})
	}

	if cfg.Country != "" {
		box, err := resolver.Resolve(cfg.Country)
		if err != nil {
			codes := resolver.Codes()
			sort.Strings(codes)
			return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(codes, ", "))
		}
		countryMin := max(cfg.MinZoom, cache.WorldMaxZoom+1)
		if countryMin <= cfg.MaxZoom {
			scopes = append(scopes, tile.Scope{
				Box:     box,
				MinZoom: uint32(countryMin),
				MaxZoom: uint32(cfg.MaxZoom),
			})
		}
	}

	if len(scopes) == 0 {
		if cfg.Country == "" && cfg.MinZoom > cache.WorldMaxZoom {
			return nil, fmt.Errorf("zoom levels above %d require -country", cache.WorldMaxZoom)
		}
		return nil, fmt.Errorf("zoom range %d-%d selects no tiles", cfg.MinZoom, cfg.MaxZoom)
	}
	return scopes, nil
}

// newResolver builds the country resolver, merging an optional bbox file.
func newResolver(bboxFile string) (*country.Resolver, error) {
	resolver, err := country.NewResolver()
	if err != nil {
		return nil, err
	}
	if bboxFile != "" {
		if err := resolver.LoadFile(bboxFile); err != nil {
			return nil, err
		}
	}
	return resolver, nil
}
