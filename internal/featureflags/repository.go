package featureflags

import (
	"context"
	"errors"
)

// ErrFlagNotFound is returned when no flag exists under the requested key.
var ErrFlagNotFound = errors.New("feature flag not found")

// Repository stores feature flags. Implementations must be safe for
// concurrent use.
type Repository interface {
	// GetFlag returns the flag stored under key, or ErrFlagNotFound.
	GetFlag(ctx context.Context, key string) (*Flag, error)

	// GetAllFlags returns every stored flag keyed by flag key.
	GetAllFlags(ctx context.Context) (map[string]*Flag, error)

	// SetFlag creates or replaces one flag.
	SetFlag(ctx context.Context, flag *Flag) error

	// SetFlags creates or replaces several flags in one operation.
	SetFlags(ctx context.Context, flags []*Flag) error

	// DeleteFlag removes a flag. Unknown keys are not an error.
	DeleteFlag(ctx context.Context, key string) error
}
