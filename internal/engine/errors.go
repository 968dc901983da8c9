package engine

import (
	"errors"
	"fmt"
)

// ConfigError reports malformed card or table configuration. It is fatal:
// surfaced to the caller immediately and never silently defaulted.
type ConfigError struct {
	CardID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.CardID != "" {
		return fmt.Sprintf("configuration error for card %q: %s", e.CardID, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// InvalidInputError reports a rejected per-request input, such as a
// non-positive amount. Returned as a typed failure, never a panic.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// UnknownCardError reports a requested card id absent from the catalog.
// The ranker skips such ids with a warning rather than failing the call.
type UnknownCardError struct {
	CardID string
}

func (e *UnknownCardError) Error() string {
	return fmt.Sprintf("unknown card id %q", e.CardID)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}
