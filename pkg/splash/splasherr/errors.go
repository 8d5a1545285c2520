// Package splasherr defines the error kinds shared by every playback stage.
//
// Errors are wrapped with context via fmt.Errorf("...: %w", ...) and
// classified with errors.Is against the sentinels below.
package splasherr

import (
	"errors"
	"fmt"
)

var (
	// Call errors 🧩
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("value out of range")

	// Untrusted input errors 📦
	ErrCorruptData = errors.New("corrupt data")
	ErrUnsupported = errors.New("unsupported format")
	ErrNotFound    = errors.New("not found")

	// Platform errors 💾
	ErrIOFailure         = errors.New("i/o failure")
	ErrResourceExhausted = errors.New("resource exhausted")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidArgument, "InvalidArgument"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrCorruptData, "CorruptData"},
	{ErrUnsupported, "Unsupported"},
	{ErrNotFound, "NotFound"},
	{ErrIOFailure, "IOFailure"},
	{ErrResourceExhausted, "ResourceExhausted"},
}

// Kind names the error kind of err, "" for nil and "Unknown" for errors
// outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

// Corruptf wraps ErrCorruptData with a formatted reason.
func Corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptData, fmt.Sprintf(format, args...))
}

// IOf wraps ErrIOFailure around cause with a formatted context.
func IOf(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", ErrIOFailure, fmt.Sprintf(format, args...), cause)
}
