package passage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecast/ridecast/internal/geo"
	"github.com/ridecast/ridecast/internal/weather"
)

type fakeResolver struct {
	calls   int
	resolve func(geo.Coordinate) (string, error)
}

func (r *fakeResolver) ReverseGeocode(_ context.Context, coord geo.Coordinate) (string, error) {
	r.calls++
	return r.resolve(coord)
}

func (r *fakeResolver) Geocode(context.Context, string) (geo.Coordinate, error) {
	return geo.Coordinate{}, errors.New("not implemented")
}

type fakeForecast struct {
	calls int
	fetch func(place string, date time.Time) ([]weather.HourlySample, error)
}

func (f *fakeForecast) ForecastFor(_ context.Context, place string, date time.Time) ([]weather.HourlySample, error) {
	f.calls++
	return f.fetch(place, date)
}

// fullDay returns one sample per hour of the arrival's calendar day.
func fullDay(date time.Time) []weather.HourlySample {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	samples := make([]weather.HourlySample, 24)
	for h := 0; h < 24; h++ {
		samples[h] = weather.HourlySample{
			Time:        day.Add(time.Duration(h) * time.Hour),
			Temperature: float64(10 + h%10),
		}
	}
	return samples
}

func namedResolver(names map[string]string) *fakeResolver {
	return &fakeResolver{resolve: func(c geo.Coordinate) (string, error) {
		key := fmt.Sprintf("%.2f:%.2f", c.Lat, c.Lon)
		if name, ok := names[key]; ok {
			return name, nil
		}
		return fmt.Sprintf("place-%s", key), nil
	}}
}

func workingForecast() *fakeForecast {
	return &fakeForecast{fetch: func(_ string, date time.Time) ([]weather.HourlySample, error) {
		return fullDay(date), nil
	}}
}

// tenKmLine is a straight 10 km line along the equator split in three points.
func tenKmLine() []geo.Coordinate {
	return []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.04497},
		{Lat: 0, Lon: 0.08993},
	}
}

func newBuilder(resolver *fakeResolver, forecast *fakeForecast) *Builder {
	return NewBuilder(BuilderConfig{
		Resolver: resolver,
		Forecast: forecast,
	})
}

func TestBuild_StraightLineScenario(t *testing.T) {
	departure := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	builder := newBuilder(namedResolver(nil), workingForecast())

	passages, err := builder.Build(context.Background(), tenKmLine(), 20, departure)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	first := passages[0]
	assert.Zero(t, first.CumulativeDistanceKm)
	assert.Equal(t, departure, first.EstimatedArrival)

	last := passages[len(passages)-1]
	assert.InDelta(t, 10.0, last.CumulativeDistanceKm, 0.1)

	// 10 km at 20 km/h is half an hour.
	wantArrival := departure.Add(30 * time.Minute)
	assert.WithinDuration(t, wantArrival, last.EstimatedArrival, 30*time.Second)
}

func TestBuild_InvalidSpeed(t *testing.T) {
	builder := newBuilder(namedResolver(nil), workingForecast())

	_, err := builder.Build(context.Background(), tenKmLine(), 0, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = builder.Build(context.Background(), tenKmLine(), -5, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSpeed)
}

func TestBuild_TooFewPoints(t *testing.T) {
	builder := newBuilder(namedResolver(nil), workingForecast())

	passages, err := builder.Build(context.Background(), []geo.Coordinate{{Lat: 51, Lon: 3}}, 20, time.Now())
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestBuild_CumulativeDistanceMonotonic(t *testing.T) {
	builder := newBuilder(namedResolver(nil), workingForecast())

	passages, err := builder.Build(context.Background(), tenKmLine(), 25, time.Now())
	require.NoError(t, err)

	for i := 1; i < len(passages); i++ {
		assert.GreaterOrEqual(t, passages[i].CumulativeDistanceKm, passages[i-1].CumulativeDistanceKm)
	}
}

func TestBuild_DedupKeyReusesResolverResult(t *testing.T) {
	// Two middle points land in the same 0.01-degree bucket; only one
	// resolver call should be made for them.
	points := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.051},
		{Lat: 0, Lon: 0.052},
		{Lat: 0, Lon: 0.2},
	}

	resolver := namedResolver(nil)
	builder := NewBuilder(BuilderConfig{
		Resolver:    resolver,
		Forecast:    workingForecast(),
		SampleStepM: 100,
	})

	_, err := builder.Build(context.Background(), points, 20, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, resolver.calls)
}

func TestBuild_ConsecutiveDuplicateNamesDropped(t *testing.T) {
	resolver := &fakeResolver{resolve: func(c geo.Coordinate) (string, error) {
		if c.Lon < 0.15 {
			return "Gent", nil
		}
		return "Deinze", nil
	}}
	points := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.1},
		{Lat: 0, Lon: 0.2},
	}

	builder := NewBuilder(BuilderConfig{
		Resolver:    resolver,
		Forecast:    workingForecast(),
		SampleStepM: 100,
	})

	passages, err := builder.Build(context.Background(), points, 20, time.Now())
	require.NoError(t, err)

	names := []string{}
	for _, p := range passages {
		if p.Status == StatusResolved {
			names = append(names, p.PlaceName)
		}
	}
	assert.Equal(t, []string{"Gent", "Deinze"}, names)

	for i := 1; i < len(passages); i++ {
		if passages[i-1].Status == StatusResolved && passages[i].Status == StatusResolved {
			assert.NotEqual(t, passages[i-1].PlaceName, passages[i].PlaceName)
		}
	}
}

func TestBuild_UnknownAndEmptyNamesDropped(t *testing.T) {
	resolver := &fakeResolver{resolve: func(c geo.Coordinate) (string, error) {
		switch {
		case c.Lon == 0:
			return "Gent", nil
		case c.Lon < 0.15:
			return "unknown", nil
		case c.Lon < 0.25:
			return "  ", nil
		default:
			return "Deinze", nil
		}
	}}
	points := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.1},
		{Lat: 0, Lon: 0.2},
		{Lat: 0, Lon: 0.3},
	}

	builder := NewBuilder(BuilderConfig{
		Resolver:    resolver,
		Forecast:    workingForecast(),
		SampleStepM: 100,
	})

	passages, err := builder.Build(context.Background(), points, 20, time.Now())
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "Gent", passages[0].PlaceName)
	assert.Equal(t, "Deinze", passages[1].PlaceName)
}

func TestBuild_GeocodeFailureDropsPassage(t *testing.T) {
	resolver := &fakeResolver{resolve: func(c geo.Coordinate) (string, error) {
		if c.Lon > 0.05 && c.Lon < 0.15 {
			return "", errors.New("upstream timeout")
		}
		return fmt.Sprintf("place-%.2f", c.Lon), nil
	}}
	points := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.1},
		{Lat: 0, Lon: 0.2},
	}

	builder := NewBuilder(BuilderConfig{
		Resolver:    resolver,
		Forecast:    workingForecast(),
		SampleStepM: 100,
	})

	passages, err := builder.Build(context.Background(), points, 20, time.Now())
	require.NoError(t, err)

	// The unnamed middle point falls out with the unknowns; the rest of the
	// batch survives.
	require.Len(t, passages, 2)
	assert.Equal(t, "place-0.00", passages[0].PlaceName)
	assert.Equal(t, "place-0.20", passages[1].PlaceName)
	for _, p := range passages {
		assert.Equal(t, StatusResolved, p.Status)
	}
}

func TestBuild_WeatherFailureKeepsPassage(t *testing.T) {
	forecast := &fakeForecast{fetch: func(place string, date time.Time) ([]weather.HourlySample, error) {
		if place == "place-0.00:0.04" {
			return nil, errors.New("quota exceeded")
		}
		return fullDay(date), nil
	}}

	builder := newBuilder(namedResolver(nil), forecast)

	passages, err := builder.Build(context.Background(), tenKmLine(), 20, time.Now())
	require.NoError(t, err)

	var failed *Passage
	for i := range passages {
		if passages[i].Status == StatusFailed {
			failed = &passages[i]
		}
	}
	require.NotNil(t, failed)
	assert.Contains(t, failed.ErrorMessage, "quota exceeded")
	assert.Nil(t, failed.Weather)
}

func TestBuild_WeatherMatchedByArrivalHour(t *testing.T) {
	departure := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	builder := newBuilder(namedResolver(nil), workingForecast())

	passages, err := builder.Build(context.Background(), tenKmLine(), 20, departure)
	require.NoError(t, err)

	for _, p := range passages {
		if p.Status != StatusResolved {
			continue
		}
		require.NotNil(t, p.Weather)
		assert.Equal(t, p.EstimatedArrival.Hour(), p.Weather.Time.Hour())
	}
}

func TestBuild_WeatherFallsBackToNearestSample(t *testing.T) {
	// Only a 06:00 and a 23:00 sample exist; a 09:xx arrival should get the
	// 06:00 one.
	forecast := &fakeForecast{fetch: func(_ string, date time.Time) ([]weather.HourlySample, error) {
		day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		return []weather.HourlySample{
			{Time: day.Add(23 * time.Hour), Temperature: 12},
			{Time: day.Add(6 * time.Hour), Temperature: 8},
		}, nil
	}}

	departure := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	builder := newBuilder(namedResolver(nil), forecast)

	passages, err := builder.Build(context.Background(), tenKmLine(), 20, departure)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	first := passages[0]
	require.Equal(t, StatusResolved, first.Status)
	require.NotNil(t, first.Weather)
	assert.Equal(t, 6, first.Weather.Time.Hour())
}

func TestBuild_CancelledContextReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	resolver := &fakeResolver{}
	resolver.resolve = func(c geo.Coordinate) (string, error) {
		if resolver.calls == 2 {
			cancel()
		}
		return fmt.Sprintf("place-%.2f", c.Lon), nil
	}

	points := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.1},
		{Lat: 0, Lon: 0.2},
		{Lat: 0, Lon: 0.3},
	}
	builder := NewBuilder(BuilderConfig{
		Resolver:    resolver,
		Forecast:    workingForecast(),
		SampleStepM: 100,
	})

	passages, err := builder.Build(ctx, points, 20, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, passages)
	assert.Less(t, len(passages), 4)
}

func TestBuild_ProgressCallback(t *testing.T) {
	var updates int
	builder := NewBuilder(BuilderConfig{
		Resolver: namedResolver(nil),
		Forecast: workingForecast(),
		OnProgress: func(processed, total int) {
			updates++
			assert.LessOrEqual(t, processed, total)
		},
	})

	_, err := builder.Build(context.Background(), tenKmLine(), 20, time.Now())
	require.NoError(t, err)
	assert.Greater(t, updates, 0)
}

func TestBuild_ProgressReportedPerWeatherFetch(t *testing.T) {
	forecast := &fakeForecast{fetch: func(place string, date time.Time) ([]weather.HourlySample, error) {
		if place == "place-0.00:0.04" {
			return nil, errors.New("quota exceeded")
		}
		return fullDay(date), nil
	}}

	var updates [][2]int
	builder := NewBuilder(BuilderConfig{
		Resolver: namedResolver(nil),
		Forecast: forecast,
		OnProgress: func(processed, total int) {
			updates = append(updates, [2]int{processed, total})
		},
	})

	_, err := builder.Build(context.Background(), tenKmLine(), 20, time.Now())
	require.NoError(t, err)

	want := [][2]int{
		{1, 3}, {2, 3}, {3, 3}, // place resolution
		{1, 3}, {2, 3}, {3, 3}, // weather attachment, the failed fetch included
	}
	assert.Equal(t, want, updates)
}

func TestBuild_SampleStepSkipsClosePoints(t *testing.T) {
	// Points 100 m apart with the default 2 km step: only the first and
	// last survive sampling.
	points := make([]geo.Coordinate, 11)
	for i := range points {
		points[i] = geo.Coordinate{Lat: 0, Lon: float64(i) * 0.0009}
	}

	resolver := &fakeResolver{resolve: func(c geo.Coordinate) (string, error) {
		return fmt.Sprintf("place-%.3f", c.Lon), nil
	}}
	builder := newBuilder(resolver, workingForecast())

	_, err := builder.Build(context.Background(), points, 20, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, resolver.calls)
}
