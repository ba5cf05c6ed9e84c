// Package proj implements the forward and inverse EPSG:6933 projection
// (cylindrical equal-area on the WGS84 ellipsoid, standard parallel 30°N)
// and projected polygon area, following Snyder's formulas. This is the
// working projection for area validation and the composite grid.
package proj

import (
	"math"
)

// WGS84 ellipsoid
const (
	semiMajorAxis       = 6378137.0
	eccentricitySquared = 0.00669437999014
)

// EPSG is the EPSG code of the projection implemented here
const EPSG = 6933

var (
	eccentricity = math.Sqrt(eccentricitySquared)

	// Scale factor along the standard parallel (30°N)
	k0 = func() float64 {
		sinPhi := math.Sin(30 * math.Pi / 180)
		return math.Cos(30*math.Pi/180) / math.Sqrt(1-eccentricitySquared*sinPhi*sinPhi)
	}()

	// Authalic q at the pole, used by the inverse projection
	qPolar = authalicQ(math.Pi / 2)
)

func authalicQ(phi float64) float64 {
	sinPhi := math.Sin(phi)
	eSin := eccentricity * sinPhi
	return (1 - eccentricitySquared) * (sinPhi/(1-eSin*eSin) - (1/(2*eccentricity))*math.Log((1-eSin)/(1+eSin)))
}

// Forward projects geodetic lon/lat (degrees) to EPSG:6933 x/y (meters)
func Forward(lon, lat float64) (x, y float64) {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180
	x = semiMajorAxis * k0 * lambda
	y = semiMajorAxis * authalicQ(phi) / (2 * k0)
	return
}

// Inverse converts EPSG:6933 x/y (meters) back to geodetic lon/lat (degrees)
func Inverse(x, y float64) (lon, lat float64) {
	lon = x / (semiMajorAxis * k0) * 180 / math.Pi

	q := 2 * y * k0 / semiMajorAxis
	sinBeta := q / qPolar
	if sinBeta > 1 {
		sinBeta = 1
	} else if sinBeta < -1 {
		sinBeta = -1
	}
	beta := math.Asin(sinBeta)

	// Authalic to geodetic latitude series (Snyder eq. 3-18)
	e2 := eccentricitySquared
	e4 := e2 * e2
	e6 := e4 * e2
	phi := beta +
		(e2/3+31*e4/180+517*e6/5040)*math.Sin(2*beta) +
		(23*e4/360+251*e6/3780)*math.Sin(4*beta) +
		(761*e6/45360)*math.Sin(6*beta)
	lat = phi * 180 / math.Pi
	return
}

// ringArea returns the signed shoelace area (m²) of a projected ring
func ringArea(ring [][]float64) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	px, py := Forward(ring[0][0], ring[0][1])
	for i := 1; i <= len(ring); i++ {
		vertex := ring[i%len(ring)]
		cx, cy := Forward(vertex[0], vertex[1])
		sum += px*cy - cx*py
		px, py = cx, cy
	}
	return sum / 2
}

// PolygonAreaKm2 returns the equal-area-projected area in km² of a polygon
// given as GeoJSON-style rings (outer ring first, then holes)
func PolygonAreaKm2(rings [][][]float64) float64 {
	if len(rings) == 0 {
		return 0
	}
	area := math.Abs(ringArea(rings[0]))
	for _, hole := range rings[1:] {
		area -= math.Abs(ringArea(hole))
	}
	if area < 0 {
		area = 0
	}
	return area / 1e6
}

// MultiPolygonAreaKm2 returns the summed area in km² of a multi-polygon
func MultiPolygonAreaKm2(polygons [][][][]float64) float64 {
	var total float64
	for _, rings := range polygons {
		total += PolygonAreaKm2(rings)
	}
	return total
}
