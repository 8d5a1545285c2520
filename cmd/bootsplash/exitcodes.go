package main

import (
	"errors"

	"github.com/provide-io/bootsplash/pkg"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// Exit codes for different error types
const (
	ExitPanic          = 101
	ExitPackageError   = 102
	ExitPlaybackError  = 103
	ExitChainloadError = 104
	ExitInvalidArgs    = 105
	ExitIOError        = 106
)

// exitError pins the exit code of a command failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, pkg.ErrVerificationFailed) {
		return ExitPackageError
	}
	switch splasherr.Kind(err) {
	case "InvalidArgument", "OutOfRange":
		return ExitInvalidArgs
	case "CorruptData", "Unsupported":
		return ExitPackageError
	case "NotFound", "IOFailure", "ResourceExhausted":
		return ExitIOError
	}
	return 1
}
