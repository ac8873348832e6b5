package bitcoder

import "errors"

// Sentinel errors for bit stream operations.
var (
	// ErrShortBuffer is reported when a Reader runs past the end of its input.
	ErrShortBuffer = errors.New("bitcoder: read past end of buffer")

	// ErrOverflow is reported when a variable-length value exceeds the
	// supported integer range.
	ErrOverflow = errors.New("bitcoder: variable-length value overflows")
)
