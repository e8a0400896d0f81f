// Package yamlutil wraps YAML decoding to isolate the external dependency.
// Callers depend on this package only, so the underlying library can change
// without touching the config layer.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrEmptyInput     = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Mode selects how unknown keys are treated while decoding.
type Mode int

const (
	// Lenient ignores keys without a matching struct field.
	Lenient Mode = iota
	// Strict rejects keys without a matching struct field.
	Strict
)

// Decode parses data into v. Configuration files use Strict so that a typo
// in a key fails loudly instead of silently falling back to a default.
func Decode(data []byte, v any, mode Mode) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	var opts []yaml.DecodeOption
	if mode == Strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
