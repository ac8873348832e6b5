package config

import "errors"

var (
	// ErrNoConfig indicates neither a path nor ROUTECOST_CONFIG was given.
	ErrNoConfig = errors.New("config: no config file given")

	// ErrUnsupportedExtension indicates a config file that is neither YAML nor TOML.
	ErrUnsupportedExtension = errors.New("config: unsupported file extension")

	// ErrMissingMetadata indicates an empty profile.metadata path.
	ErrMissingMetadata = errors.New("config: profile.metadata is required")

	// ErrUnknownContext indicates a profile context other than way or node.
	ErrUnknownContext = errors.New("config: unknown context")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing environment variables")

	// ErrInvalidHitRatio indicates a health hit-ratio threshold outside 0..1.
	ErrInvalidHitRatio = errors.New("config: hit ratio must be within 0..1")
)
