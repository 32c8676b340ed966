package types

import (
	"fmt"
	"strconv"
	"strings"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the canonical "lat,lng" form stored on orders.
func (p LatLng) String() string {
	return fmt.Sprintf("%v,%v", p.Lat, p.Lng)
}

// ParseLatLng parses a "lat,lng" string. Orders whose delivery point could not
// be geocoded store an opaque place-code instead; those return ok=false.
func ParseLatLng(raw string) (LatLng, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return LatLng{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, false
	}
	return LatLng{Lat: lat, Lng: lng}, true
}
