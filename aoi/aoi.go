// Package aoi validates the user-selected area of interest before any
// catalog or asset request is made.
package aoi

import (
	"fmt"

	"github.com/eugene-tulu/ndvi-explorer/proj"
	"github.com/venicegeo/geojson-go/geojson"
)

// MaxAreaKm2 is the largest area of interest accepted for analysis
const MaxAreaKm2 = 500.0

// InvalidGeometryError indicates an unparseable, empty, or unsupported
// input geometry
type InvalidGeometryError struct {
	Reason string
}

// Error implements the error interface
func (err InvalidGeometryError) Error() string {
	return "Invalid area of interest geometry: " + err.Reason
}

// AreaTooLargeError indicates an area of interest over the size cap
type AreaTooLargeError struct {
	AreaKm2    float64
	MaxAreaKm2 float64
}

// Error implements the error interface
func (err AreaTooLargeError) Error() string {
	return fmt.Sprintf("Area of interest is %.2f km², exceeding the maximum of %.0f km²", err.AreaKm2, err.MaxAreaKm2)
}

// AreaOfInterest is a validated analysis polygon in WGS84 coordinates
type AreaOfInterest struct {
	Geometry interface{}
	Bbox     geojson.BoundingBox
	AreaKm2  float64

	polygons [][][][]float64
}

// Parse builds an AreaOfInterest from raw GeoJSON. The input may be a bare
// Polygon or MultiPolygon geometry, a Feature, or a FeatureCollection (in
// which case the first feature carrying a geometry is used).
func Parse(data []byte) (*AreaOfInterest, error) {
	parsed, err := geojson.Parse(data)
	if err != nil {
		return nil, InvalidGeometryError{Reason: err.Error()}
	}

	switch typed := parsed.(type) {
	case *geojson.FeatureCollection:
		for _, feature := range typed.Features {
			if feature != nil && feature.Geometry != nil {
				return FromGeometry(feature.Geometry)
			}
		}
		return nil, InvalidGeometryError{Reason: "feature collection contains no geometry"}
	case *geojson.Feature:
		if typed.Geometry == nil {
			return nil, InvalidGeometryError{Reason: "feature contains no geometry"}
		}
		return FromGeometry(typed.Geometry)
	default:
		return FromGeometry(parsed)
	}
}

// FromGeometry builds an AreaOfInterest from an already-parsed GeoJSON
// geometry object
func FromGeometry(geometry interface{}) (*AreaOfInterest, error) {
	var polygons [][][][]float64
	switch typed := geometry.(type) {
	case *geojson.Polygon:
		polygons = [][][][]float64{typed.Coordinates}
	case *geojson.MultiPolygon:
		polygons = typed.Coordinates
	default:
		return nil, InvalidGeometryError{Reason: fmt.Sprintf("expected a Polygon or MultiPolygon, got %T", geometry)}
	}

	if emptyPolygons(polygons) {
		return nil, InvalidGeometryError{Reason: "geometry is empty"}
	}

	feature := geojson.NewFeature(geometry, "", nil)

	return &AreaOfInterest{
		Geometry: geometry,
		Bbox:     feature.ForceBbox(),
		AreaKm2:  proj.MultiPolygonAreaKm2(polygons),
		polygons: polygons,
	}, nil
}

func emptyPolygons(polygons [][][][]float64) bool {
	for _, rings := range polygons {
		for _, ring := range rings {
			if len(ring) >= 3 {
				return false
			}
		}
	}
	return true
}

// Validate enforces the area cap
func (a *AreaOfInterest) Validate() error {
	if a.AreaKm2 > MaxAreaKm2 {
		return AreaTooLargeError{AreaKm2: a.AreaKm2, MaxAreaKm2: MaxAreaKm2}
	}
	return nil
}

// Contains reports whether the given WGS84 point falls inside the area of
// interest, using even-odd ray casting so holes are respected
func (a *AreaOfInterest) Contains(lon, lat float64) bool {
	for _, rings := range a.polygons {
		inside := false
		for _, ring := range rings {
			if pointCrossesRing(ring, lon, lat) {
				inside = !inside
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// pointCrossesRing reports whether a ray cast eastward from the point
// crosses the ring an odd number of times
func pointCrossesRing(ring [][]float64, lon, lat float64) bool {
	odd := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, yj := ring[i][1], ring[j][1]
		xi, xj := ring[i][0], ring[j][0]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			odd = !odd
		}
		j = i
	}
	return odd
}
