package polyline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/pkg/polyline"
)

// googleExample is the worked example from the format documentation.
const googleExample = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func assertCoordNear(t *testing.T, want, got polyline.Coordinate, tolerance float64) {
	t.Helper()
	assert.InDelta(t, want.Lat, got.Lat, tolerance)
	assert.InDelta(t, want.Lon, got.Lon, tolerance)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    []polyline.Coordinate
	}{
		{
			name:    "single point",
			encoded: "_p~iF~ps|U",
			want:    []polyline.Coordinate{{Lat: 38.5, Lon: -120.2}},
		},
		{
			name:    "documented example",
			encoded: googleExample,
			want: []polyline.Coordinate{
				{Lat: 38.5, Lon: -120.2},
				{Lat: 40.7, Lon: -120.95},
				{Lat: 43.252, Lon: -126.453},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := polyline.Decode(tt.encoded)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assertCoordNear(t, tt.want[i], got[i], 0.00001)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	assert.Nil(t, polyline.Decode(""))
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		coords []polyline.Coordinate
	}{
		{
			name:   "single point",
			coords: []polyline.Coordinate{{Lat: 38.5, Lon: -120.2}},
		},
		{
			name: "climb over the Stelvio",
			coords: []polyline.Coordinate{
				{Lat: 46.6036, Lon: 10.4531},
				{Lat: 46.5637, Lon: 10.4278},
				{Lat: 46.5285, Lon: 10.4543},
			},
		},
		{
			name: "negative and positive hemispheres",
			coords: []polyline.Coordinate{
				{Lat: -33.8688, Lon: 151.2093},
				{Lat: 40.7128, Lon: -74.0060},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := polyline.Decode(polyline.Encode(tt.coords))
			require.Len(t, decoded, len(tt.coords))
			for i := range decoded {
				assertCoordNear(t, tt.coords[i], decoded[i], 0.00001)
			}
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	assert.Empty(t, polyline.Encode(nil))
	assert.Empty(t, polyline.Encode([]polyline.Coordinate{}))
}

func TestEncode_MatchesDocumentedExample(t *testing.T) {
	coords := []polyline.Coordinate{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	assert.Equal(t, googleExample, polyline.Encode(coords))
}

func TestLength(t *testing.T) {
	tests := []struct {
		name       string
		coords     []polyline.Coordinate
		wantMeters float64
		tolerance  float64
	}{
		{
			name: "empty track",
		},
		{
			name:   "single point",
			coords: []polyline.Coordinate{{Lat: 47.0, Lon: 8.0}},
		},
		{
			name: "one degree of latitude",
			coords: []polyline.Coordinate{
				{Lat: 0, Lon: 0},
				{Lat: 1, Lon: 0},
			},
			wantMeters: 111195,
			tolerance:  200,
		},
		{
			name: "Amsterdam to Utrecht",
			coords: []polyline.Coordinate{
				{Lat: 52.3676, Lon: 4.9041},
				{Lat: 52.0907, Lon: 5.1214},
			},
			wantMeters: 34000,
			tolerance:  2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantMeters, polyline.Length(tt.coords), tt.tolerance+0.001)
		})
	}
}

func TestSample(t *testing.T) {
	// Four points heading due north, each leg roughly 1.1 km.
	track := []polyline.Coordinate{
		{Lat: 52.00, Lon: 4.0},
		{Lat: 52.01, Lon: 4.0},
		{Lat: 52.02, Lon: 4.0},
		{Lat: 52.03, Lon: 4.0},
	}

	t.Run("interval shorter than legs adds points", func(t *testing.T) {
		sampled := polyline.Sample(track, 500)

		assert.GreaterOrEqual(t, len(sampled), 5)
		assertCoordNear(t, track[0], sampled[0], 0.0001)
		assertCoordNear(t, track[len(track)-1], sampled[len(sampled)-1], 0.0001)
	})

	t.Run("interval longer than track keeps endpoints", func(t *testing.T) {
		sampled := polyline.Sample(track, 10000)

		require.Len(t, sampled, 2)
		assertCoordNear(t, track[0], sampled[0], 0.0001)
		assertCoordNear(t, track[3], sampled[1], 0.0001)
	})

	t.Run("non-positive interval returns track unchanged", func(t *testing.T) {
		assert.Equal(t, track, polyline.Sample(track, 0))
		assert.Equal(t, track, polyline.Sample(track, -1))
	})

	t.Run("empty track", func(t *testing.T) {
		assert.Nil(t, polyline.Sample(nil, 500))
	})
}

func BenchmarkDecode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = polyline.Decode(googleExample)
	}
}

func BenchmarkEncode(b *testing.B) {
	coords := []polyline.Coordinate{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = polyline.Encode(coords)
	}
}
