package tile

import "io"

// Scope selects the tiles of a bounding box across a zoom range.
type Scope struct {
	Box     BBox
	MinZoom uint32
	MaxZoom uint32
}

// Empty reports whether the scope selects no zoom levels.
func (s Scope) Empty() bool {
	return s.MinZoom > s.MaxZoom
}

// RangeAt returns the tile range of the scope's box at the given zoom.
func (s Scope) RangeAt(zoom uint32) Range {
	if zoom < s.MinZoom || zoom > s.MaxZoom {
		return Range{Z: zoom, empty: true}
	}
	return RangeAt(s.Box, zoom)
}

// Contains reports whether the address falls inside the scope.
func (s Scope) Contains(a Address) bool {
	return s.RangeAt(a.Z).Contains(a)
}

// Count returns the total number of addresses the scope enumerates.
func (s Scope) Count() int {
	total := 0
	for z := s.MinZoom; !s.Empty() && z <= s.MaxZoom; z++ {
		total += s.RangeAt(z).Count()
	}
	return total
}

// ZoomCounts returns the number of addresses per zoom level.
func (s Scope) ZoomCounts() map[uint32]int {
	counts := make(map[uint32]int)
	for z := s.MinZoom; !s.Empty() && z <= s.MaxZoom; z++ {
		counts[z] = s.RangeAt(z).Count()
	}
	return counts
}

// Addresses returns a lazy iterator over the scope's addresses in
// zoom-major order. Two iterators over the same scope yield identical
// sequences.
func (s Scope) Addresses() *Iterator {
	return &Iterator{scope: s, zoom: s.MinZoom, started: false}
}

// Iterator enumerates the addresses of a Scope. Next returns io.EOF when
// the sequence is exhausted.
type Iterator struct {
	scope   Scope
	zoom    uint32
	r       Range
	x, y    uint32
	started bool
	done    bool
}

// Next returns the next address in the sequence, or io.EOF.
func (it *Iterator) Next() (Address, error) {
	if it.done || it.scope.Empty() {
		it.done = true
		return Address{}, io.EOF
	}

	if !it.started {
		if !it.enterZoom(it.scope.MinZoom) {
			it.done = true
			return Address{}, io.EOF
		}
		it.started = true
		return Address{Z: it.r.Z, X: it.x, Y: it.y}, nil
	}

	// Advance y, then x, then zoom.
	if it.y < it.r.MaxY {
		it.y++
	} else if it.x < it.r.MaxX {
		it.x++
		it.y = it.r.MinY
	} else if !it.enterZoom(it.zoom + 1) {
		it.done = true
		return Address{}, io.EOF
	}

	return Address{Z: it.r.Z, X: it.x, Y: it.y}, nil
}

// enterZoom positions the iterator at the first non-empty range at or after
// the given zoom. Returns false when no such range exists.
func (it *Iterator) enterZoom(zoom uint32) bool {
	for z := zoom; z <= it.scope.MaxZoom; z++ {
		r := it.scope.RangeAt(z)
		if r.Count() == 0 {
			continue
		}
		it.zoom = z
		it.r = r
		it.x = r.MinX
		it.y = r.MinY
		return true
	}
	return false
}
