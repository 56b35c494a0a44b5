package mapping

import (
	"errors"
	"fmt"
)

// ErrConfig matches every ConfigError with errors.Is.
var ErrConfig = errors.New("invalid cache configuration")

// ErrNoAccesses is reported as the hit rate of a run without accesses.
var ErrNoAccesses = errors.New("hit rate undefined: no accesses")

// A ConfigError reports a geometry that cannot be simulated. It is raised
// before any address is processed.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %d", ErrConfig, e.Field, e.Reason, e.Value)
}

// Is makes errors.Is(err, ErrConfig) true for every ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
