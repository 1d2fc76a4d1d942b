package tile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MercatorLatLimit is the maximum latitude representable in the Web-Mercator
// projection. Latitudes beyond it are clamped; boxes entirely beyond it
// cover no tiles.
const MercatorLatLimit = 85.05112878

// Address identifies one map tile by zoom level and tile coordinates.
type Address struct {
	Z uint32
	X uint32
	Y uint32
}

// String returns the address in z/x/y form.
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Z, a.X, a.Y)
}

// ArchivePath returns the canonical relative path of the tile inside a
// bundle archive.
func (a Address) ArchivePath() string {
	return fmt.Sprintf("%d/%d/%d.png", a.Z, a.X, a.Y)
}

// Valid reports whether the tile coordinates exist at the address's zoom.
func (a Address) Valid() bool {
	n := uint32(1) << a.Z
	return a.X < n && a.Y < n
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// World covers the full Web-Mercator extent.
func World() BBox {
	return BBox{MinLat: -85, MaxLat: 85, MinLon: -180, MaxLon: 180}
}

// Range is the inclusive rectangle of tile coordinates a bounding box covers
// at one zoom level. An empty range has Count() == 0.
type Range struct {
	Z          uint32
	MinX, MaxX uint32
	MinY, MaxY uint32
	empty      bool
}

// Count returns the number of addresses in the range.
func (r Range) Count() int {
	if r.empty {
		return 0
	}
	return int(r.MaxX-r.MinX+1) * int(r.MaxY-r.MinY+1)
}

// Contains reports whether the address falls inside the range.
func (r Range) Contains(a Address) bool {
	if r.empty || a.Z != r.Z {
		return false
	}
	return a.X >= r.MinX && a.X <= r.MaxX && a.Y >= r.MinY && a.Y <= r.MaxY
}

// RangeAt computes the tile range covering the box at the given zoom.
func RangeAt(box BBox, zoom uint32) Range {
	if box.MinLat > box.MaxLat || box.MinLon > box.MaxLon {
		return Range{Z: zoom, empty: true}
	}
	if box.MinLat >= MercatorLatLimit || box.MaxLat <= -MercatorLatLimit {
		return Range{Z: zoom, empty: true}
	}

	minLat := math.Max(box.MinLat, -MercatorLatLimit)
	maxLat := math.Min(box.MaxLat, MercatorLatLimit)
	minLon := math.Max(box.MinLon, -180)
	maxLon := math.Min(box.MaxLon, 180)

	z := maptile.Zoom(zoom)
	max := uint32(1)<<zoom - 1

	// Tile y grows southward, so the north edge gives MinY.
	nw := maptile.Fraction(orb.Point{minLon, maxLat}, z)
	se := maptile.Fraction(orb.Point{maxLon, minLat}, z)

	return Range{
		Z:    zoom,
		MinX: clampFloor(nw[0], max),
		MaxX: clampFloor(se[0], max),
		MinY: clampFloor(nw[1], max),
		MaxY: clampFloor(se[1], max),
	}
}

func clampFloor(f float64, max uint32) uint32 {
	if f < 0 {
		return 0
	}
	v := uint32(math.Floor(f))
	if v > max {
		return max
	}
	return v
}
