// Package geo provides great-circle geometry helpers for route analysis.
package geo

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within geographic bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceKm calculates the great-circle distance between two points in
// kilometers using the haversine formula. Returns 0 for identical points.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// BearingDeg calculates the initial bearing from a to b in degrees,
// normalized to [0, 360). Returns 0 when the points coincide.
func BearingDeg(a, b Coordinate) float64 {
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// CumulativeDistances returns the prefix sums of pairwise distances along an
// ordered point sequence. The result has the same length as the input and its
// first element is always 0.
func CumulativeDistances(points []Coordinate) []float64 {
	if len(points) == 0 {
		return nil
	}

	distances := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		distances[i] = distances[i-1] + DistanceKm(points[i-1], points[i])
	}
	return distances
}

// TotalDistanceKm returns the total route length along an ordered point
// sequence.
func TotalDistanceKm(points []Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += DistanceKm(points[i-1], points[i])
	}
	return total
}
