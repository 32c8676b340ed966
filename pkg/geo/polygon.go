// Package geo implements the point-in-polygon test used for coverage zones.
package geo

import "github.com/ordena-app/ordena-backend/pkg/types"

// IsInside reports whether point falls within the polygon using the even-odd
// ray-casting rule: a horizontal ray from the point crosses the edge list an
// odd number of times iff the point is inside. The ring is implicitly closed.
//
// The function is pure and deterministic; assignment decisions derived from it
// are logged and must reproduce. Degenerate or self-intersecting polygons are
// not validated and yield whatever the even-odd rule says.
func IsInside(point types.LatLng, polygon []types.LatLng) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		vi, vj := polygon[i], polygon[j]
		if (vi.Lng > point.Lng) != (vj.Lng > point.Lng) {
			crossLat := (vj.Lat-vi.Lat)*(point.Lng-vi.Lng)/(vj.Lng-vi.Lng) + vi.Lat
			if point.Lat < crossLat {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
