package utils

import (
	"context"
	"fmt"
)

// TryAgainError represents an error indicating that the operation should be retried
// once more bytes are available.
type TryAgainError struct {
}

// Error returns the error message for TryAgainError.
func (TryAgainError) Error() string {
	return "Try again"
}

// MalformedInputError reports a container whose declared layout is inconsistent.
type MalformedInputError struct {
	Reason string
	Offset int64
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed input at offset %d: %s", e.Offset, e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Malformed builds a MalformedInputError.
func Malformed(offset int64, format string, args ...any) error {
	return &MalformedInputError{Reason: fmt.Sprintf(format, args...), Offset: offset}
}

// UnsupportedFormatError reports a container signature or codec tag that is not handled.
type UnsupportedFormatError struct {
	Kind string
	Tag  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Kind, e.Tag)
}

// ProtocolMisuseError is returned when the parser is driven in a way it does not allow.
type ProtocolMisuseError struct {
	Reason string
}

func (e *ProtocolMisuseError) Error() string {
	return "protocol misuse: " + e.Reason
}

// CancelledError wraps the context error that stopped a parse.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return "parse cancelled: " + e.Err.Error()
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// CheckContext returns a CancelledError once ctx is done.
func CheckContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &CancelledError{Err: err}
	}
	return nil
}
