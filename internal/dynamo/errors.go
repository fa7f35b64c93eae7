package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for trajectory generation.
var (
	// ErrConfig indicates geometry, frame count or weights that cannot
	// describe a valid scene. It is never recovered from locally.
	ErrConfig = errors.New("dynamo: invalid configuration")
)

// ConfigError wraps ErrConfig with the offending field.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dynamo: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}
