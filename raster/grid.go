// Package raster builds a lazy, chunked band stack over a target equal-area
// grid. Pixel data is not fetched until a computation materializes it.
package raster

import (
	"math"

	"github.com/eugene-tulu/ndvi-explorer/proj"
	"github.com/venicegeo/geojson-go/geojson"
)

// DefaultResolution is the working grid resolution in meters, matching the
// native resolution of the Sentinel-2 red and near-infrared bands
const DefaultResolution = 10.0

// Grid is the target EPSG:6933 raster grid of an analysis run
type Grid struct {
	OriginX    float64 // left edge, meters
	OriginY    float64 // top edge, meters
	Resolution float64 // cell size, meters
	Width      int
	Height     int
	EPSG       int
}

// NewGrid derives the working grid covering a WGS84 bounding box at the
// given resolution
func NewGrid(bbox geojson.BoundingBox, resolution float64) Grid {
	minLon, minLat, maxLon, maxLat := bboxEdges(bbox)

	corners := [][2]float64{{minLon, minLat}, {minLon, maxLat}, {maxLon, minLat}, {maxLon, maxLat}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range corners {
		x, y := proj.Forward(corner[0], corner[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	width := int(math.Ceil((maxX - minX) / resolution))
	height := int(math.Ceil((maxY - minY) / resolution))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	return Grid{
		OriginX:    minX,
		OriginY:    maxY,
		Resolution: resolution,
		Width:      width,
		Height:     height,
		EPSG:       proj.EPSG,
	}
}

// CellCenter returns the projected coordinates of a cell center
func (g Grid) CellCenter(col, row int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.Resolution
	y = g.OriginY - (float64(row)+0.5)*g.Resolution
	return
}

// CellCenterLonLat returns the WGS84 coordinates of a cell center
func (g Grid) CellCenterLonLat(col, row int) (lon, lat float64) {
	return proj.Inverse(g.CellCenter(col, row))
}

func bboxEdges(bbox geojson.BoundingBox) (minLon, minLat, maxLon, maxLat float64) {
	if len(bbox) >= 4 {
		half := len(bbox) / 2
		return bbox[0], bbox[1], bbox[half], bbox[half+1]
	}
	return 0, 0, 0, 0
}
