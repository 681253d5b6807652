// Package polyline implements Google's encoded polyline format at the
// standard 1e-5 precision, plus a few geometry helpers for working with
// the decoded tracks.
//
// Format reference:
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import "math"

// precision is the fixed scaling factor of the standard encoding. Both
// major routing engines (Google, ORS) emit five decimal places.
const precision = 1e5

const earthRadiusMeters = 6371000

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Decode converts an encoded polyline into coordinates. Malformed
// trailing bytes are dropped rather than reported, matching the lenient
// behavior of most decoders.
func Decode(encoded string) []Coordinate {
	if encoded == "" {
		return nil
	}

	coords := make([]Coordinate, 0, len(encoded)/4)
	var lat, lon, index int

	for index < len(encoded) {
		latDelta, next := decodeDelta(encoded, index)
		lonDelta, next := decodeDelta(encoded, next)
		index = next

		lat += latDelta
		lon += lonDelta
		coords = append(coords, Coordinate{
			Lat: float64(lat) / precision,
			Lon: float64(lon) / precision,
		})
	}
	return coords
}

// Encode converts coordinates into an encoded polyline.
func Encode(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(coords)*4)
	var prevLat, prevLon int

	for _, c := range coords {
		lat := int(math.Round(c.Lat * precision))
		lon := int(math.Round(c.Lon * precision))

		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

// decodeDelta reads one zigzag-encoded delta starting at index and
// returns it together with the index of the next value.
func decodeDelta(encoded string, index int) (int, int) {
	var result, shift int

	for index < len(encoded) {
		chunk := int(encoded[index]) - 63
		index++
		result |= (chunk & 0x1f) << shift
		shift += 5
		if chunk < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// appendDelta writes one delta as zigzag-encoded 5-bit chunks.
func appendDelta(buf []byte, delta int) []byte {
	if delta < 0 {
		delta = ^(delta << 1)
	} else {
		delta <<= 1
	}

	for delta >= 0x20 {
		buf = append(buf, byte((delta&0x1f)|0x20)+63)
		delta >>= 5
	}
	return append(buf, byte(delta)+63)
}

// Length returns the total track length in meters.
func Length(coords []Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += haversineDistance(coords[i-1], coords[i])
	}
	return total
}

// Sample thins a track to points roughly intervalMeters apart, keeping
// the first and last point. Sample points falling inside a segment are
// linearly interpolated, which is accurate enough at typical GPX
// segment lengths. A non-positive interval returns the track unchanged.
func Sample(coords []Coordinate, intervalMeters float64) []Coordinate {
	if len(coords) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		return coords
	}

	sampled := []Coordinate{coords[0]}
	carried := 0.0

	for i := 1; i < len(coords); i++ {
		segment := haversineDistance(coords[i-1], coords[i])

		for carried+segment >= intervalMeters {
			needed := intervalMeters - carried
			fraction := needed / segment
			sampled = append(sampled, lerp(coords[i-1], coords[i], fraction))

			segment -= needed
			carried = 0
		}
		carried += segment
	}

	last := coords[len(coords)-1]
	if sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}
	return sampled
}

func lerp(a, b Coordinate, t float64) Coordinate {
	return Coordinate{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}
}

// haversineDistance returns the great-circle distance in meters.
func haversineDistance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
