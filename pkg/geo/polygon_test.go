package geo

import (
	"testing"

	"github.com/ordena-app/ordena-backend/pkg/types"
	"github.com/stretchr/testify/assert"
)

func square() []types.LatLng {
	return []types.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
		{Lat: 10, Lng: 0},
	}
}

func TestIsInside_ConvexPolygon(t *testing.T) {
	insidePoints := []types.LatLng{
		{Lat: 5, Lng: 5},
		{Lat: 1, Lng: 9},
		{Lat: 9.9, Lng: 0.1},
	}
	for _, p := range insidePoints {
		assert.True(t, IsInside(p, square()), "expected %v inside", p)
	}

	outsidePoints := []types.LatLng{
		{Lat: -1, Lng: 5},
		{Lat: 5, Lng: 11},
		{Lat: 15, Lng: 15},
		{Lat: -0.001, Lng: -0.001},
	}
	for _, p := range outsidePoints {
		assert.False(t, IsInside(p, square()), "expected %v outside", p)
	}
}

func TestIsInside_Deterministic(t *testing.T) {
	p := types.LatLng{Lat: 3.3, Lng: 7.7}
	first := IsInside(p, square())
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, IsInside(p, square()))
	}
}

func TestIsInside_ConcavePolygon(t *testing.T) {
	// U-shape: the notch between the prongs is outside.
	u := []types.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 10, Lng: 0},
		{Lat: 10, Lng: 3},
		{Lat: 3, Lng: 3},
		{Lat: 3, Lng: 7},
		{Lat: 10, Lng: 7},
		{Lat: 10, Lng: 10},
		{Lat: 0, Lng: 10},
	}
	assert.True(t, IsInside(types.LatLng{Lat: 1, Lng: 5}, u))
	assert.False(t, IsInside(types.LatLng{Lat: 8, Lng: 5}, u))
}

func TestIsInside_TooFewVertices(t *testing.T) {
	line := []types.LatLng{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}}
	assert.False(t, IsInside(types.LatLng{Lat: 5, Lng: 5}, line))
}
