// Package country resolves ISO country codes to geographic bounding boxes.
//
// A small preset table ships with the binary; a country_bbox.json file can
// extend or override it. The boxes are deliberately coarse: they bound the
// tile enumeration, they do not trace borders.
package country

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Hogesyx/lvgl-map-tiles-downloader/internal/tile"
)

//go:embed country_bbox.json
var presetData []byte

// Resolver maps ISO country codes to bounding boxes.
type Resolver struct {
	boxes map[string]tile.BBox
}

// NewResolver returns a resolver seeded with the embedded presets.
func NewResolver() (*Resolver, error) {
	boxes := make(map[string]tile.BBox)
	if err := json.Unmarshal(presetData, &boxes); err != nil {
		return nil, fmt.Errorf("country: parse embedded presets: %w", err)
	}
	return &Resolver{boxes: boxes}, nil
}

// LoadFile merges boxes from a JSON file, overriding presets on conflict.
// The format matches the embedded table: {"SG": {"min_lat": ..., ...}}.
func (r *Resolver) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("country: read %s: %w", path, err)
	}
	extra := make(map[string]tile.BBox)
	if err := json.Unmarshal(data, &extra); err != nil {
		return fmt.Errorf("country: parse %s: %w", path, err)
	}
	for code, box := range extra {
		r.boxes[strings.ToUpper(code)] = box
	}
	return nil
}

// Resolve returns the bounding box for an ISO country code. Codes are
// case-insensitive. Unknown codes are a configuration error.
func (r *Resolver) Resolve(code string) (tile.BBox, error) {
	box, ok := r.boxes[strings.ToUpper(code)]
	if !ok {
		return tile.BBox{}, fmt.Errorf("country: unknown country code %q", code)
	}
	return box, nil
}

// Codes returns the known country codes, unordered.
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.boxes))
	for code := range r.boxes {
		codes = append(codes, code)
	}
	return codes
}
