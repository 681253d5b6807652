// Package geocode defines the place resolution contract used by the passage
// pipeline and the forecast providers.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridecast/ridecast/internal/geo"
)

// ErrPlaceNotFound is returned when a name or coordinate resolves to nothing.
var ErrPlaceNotFound = errors.New("place not found")

// ResolutionError describes a failed resolver call. It wraps the underlying
// cause so callers can still match sentinel errors with errors.Is.
type ResolutionError struct {
	Provider string
	Query    string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: resolving %q: %v", e.Provider, e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PlaceResolver resolves between coordinates and human place names.
// Implementations are expected to pace their own upstream calls.
type PlaceResolver interface {
	// ReverseGeocode returns the locality name nearest to the coordinate.
	ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error)

	// Geocode returns the coordinate for a free-form place name.
	Geocode(ctx context.Context, name string) (geo.Coordinate, error)
}
