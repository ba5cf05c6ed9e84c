package proj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForward_EquatorAndMeridianAreZero(t *testing.T) {
	// Tested code
	x, y := Forward(0, 0)

	// Asserts
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestForward_HemisphereSymmetry(t *testing.T) {
	// Tested code
	_, yNorth := Forward(10, 45)
	_, ySouth := Forward(10, -45)
	xWest, _ := Forward(-10, 45)
	xEast, _ := Forward(10, 45)

	// Asserts
	assert.InDelta(t, -yNorth, ySouth, 1e-6)
	assert.InDelta(t, -xEast, xWest, 1e-6)
}

func TestInverse_RoundTrip(t *testing.T) {
	coordinates := [][2]float64{
		{36.8, -1.3},
		{0, 0},
		{-122.4, 37.8},
		{179.9, 84.9},
		{-179.9, -84.9},
	}

	for _, coordinate := range coordinates {
		// Tested code
		x, y := Forward(coordinate[0], coordinate[1])
		lon, lat := Inverse(x, y)

		// Asserts
		assert.InDelta(t, coordinate[0], lon, 1e-6)
		assert.InDelta(t, coordinate[1], lat, 1e-6)
	}
}

func TestPolygonAreaKm2_EquatorialSquare(t *testing.T) {
	// Mock: a 0.01° x 0.01° square at the equator covers about 1.23 km²
	ring := [][]float64{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}

	// Tested code
	area := PolygonAreaKm2([][][]float64{ring})

	// Asserts
	assert.InDelta(t, 1.23, area, 0.02)
}

func TestPolygonAreaKm2_HoleIsSubtracted(t *testing.T) {
	outer := [][]float64{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}
	hole := [][]float64{{0.002, 0.002}, {0.008, 0.002}, {0.008, 0.008}, {0.002, 0.008}, {0.002, 0.002}}

	// Tested code
	full := PolygonAreaKm2([][][]float64{outer})
	withHole := PolygonAreaKm2([][][]float64{outer, hole})

	// Asserts
	assert.True(t, withHole < full)
	assert.True(t, withHole > 0)
}

func TestPolygonAreaKm2_DegenerateRing(t *testing.T) {
	// Tested code
	area := PolygonAreaKm2([][][]float64{{{0, 0}, {1, 1}}})

	// Asserts
	assert.Equal(t, 0.0, area)
}

func TestMultiPolygonAreaKm2_Sums(t *testing.T) {
	square := [][][]float64{{{0, 0}, {0.01, 0}, {0.01, 0.01}, {0, 0.01}, {0, 0}}}
	shifted := [][][]float64{{{1, 0}, {1.01, 0}, {1.01, 0.01}, {1, 0.01}, {1, 0}}}

	// Tested code
	single := PolygonAreaKm2(square)
	total := MultiPolygonAreaKm2([][][][]float64{square, shifted})

	// Asserts
	assert.InDelta(t, 2*single, total, 0.01)
}
