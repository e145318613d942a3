package core

import "errors"

// Error taxonomy shared by every layer. Callers match with errors.Is.
var (
	// ErrInvalidConfiguration is returned when a configuration document
	// cannot be parsed or fails validation. Not retryable.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidAction is returned for out-of-range indices, unknown
	// keystrokes and malformed batch inputs. The caller may retry.
	ErrInvalidAction = errors.New("invalid action")

	// ErrTypeMismatch is returned when the observation encoder is given
	// something other than a player state snapshot.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedPlatform is returned by capability checks for
	// features unavailable on the current OS or terminal.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
