package codec

import "errors"

// Sentinel errors for codec operations.
var (
	// ErrFixedOverflow indicates a registry whose fields need more than 64 bits
	// in the fixed format.
	ErrFixedOverflow = errors.New("codec: fixed format needs more than 64 bits")

	// ErrFixedLength indicates a fixed-format buffer that is not 8 bytes long.
	ErrFixedLength = errors.New("codec: fixed format buffer must be 8 bytes")

	// ErrVectorLength indicates an index vector that does not match the registry.
	ErrVectorLength = errors.New("codec: index vector length mismatch")

	// ErrIndexOutOfRange indicates a value index outside its domain.
	ErrIndexOutOfRange = errors.New("codec: value index out of range")

	// ErrUnknownFormat indicates an unrecognized format name.
	ErrUnknownFormat = errors.New("codec: unknown format")
)
