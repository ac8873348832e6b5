package lookup

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry and metadata operations.
var (
	// ErrIndexOutOfRange indicates a value index outside a domain's current range.
	ErrIndexOutOfRange = errors.New("lookup: value index out of range")

	// ErrNoContextData indicates a metadata file without lines for a context.
	ErrNoContextData = errors.New("lookup: no data for context (old version?)")

	// ErrMalformedLine indicates a metadata line without a name and a value.
	ErrMalformedLine = errors.New("lookup: malformed metadata line")
)

// ConfigError reports a configuration or version mismatch. Line is 1-based
// and zero when the error is not tied to a source line.
type ConfigError struct {
	Context string
	Line    int
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lookup: context %q, line %d: %v", e.Context, e.Line, e.Err)
	}
	return fmt.Sprintf("lookup: context %q: %v", e.Context, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
