package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnsupported indicates a format, language or operation is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrCorrupt indicates a file is corrupt or unreadable
	ErrCorrupt = errors.New("corrupt file")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration. Raised before any
	// destination I/O happens.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIntegrity indicates a corrupt dataset: duplicate identifiers,
	// missing audio, or stages that do not line up by entry id.
	ErrIntegrity = errors.New("integrity violation")
)
