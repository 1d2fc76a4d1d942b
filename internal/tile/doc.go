// Package tile models slippy-map tile addresses and enumerates the
// addresses covering a geographic bounding box.
//
// A tile address is the (zoom, x, y) triple of the standard Web-Mercator
// tiling scheme. Projection from longitude/latitude to fractional tile
// coordinates is delegated to github.com/paulmach/orb/maptile.
//
// # Enumeration
//
// A Scope pairs a bounding box with a zoom range. Addresses returns a lazy
// iterator over every address whose tile intersects the box, one zoom level
// at a time:
//
//	iter := scope.Addresses()
//	for {
//	    addr, err := iter.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    // ...
//	}
//
// Enumeration is deterministic: zoom-major order, then x, then y. Boxes
// entirely outside the Web-Mercator latitude limit yield an empty iterator.
package tile
