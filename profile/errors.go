package profile

import "errors"

var (
	// ErrNilParser indicates a nil Parser was provided.
	ErrNilParser = errors.New("profile: parser is nil")

	// ErrRegistryNotFrozen indicates the registry was not frozen by metadata
	// loading before building a context.
	ErrRegistryNotFrozen = errors.New("profile: lookup registry is not frozen")

	// ErrNotCompiled indicates evaluation before a successful Compile.
	ErrNotCompiled = errors.New("profile: context is not compiled")

	// ErrNoExpressions indicates the profile has no expressions for a context.
	ErrNoExpressions = errors.New("profile: no expressions for context")

	// ErrVectorLength indicates an index vector does not match the registry.
	ErrVectorLength = errors.New("profile: index vector length mismatch")
)
