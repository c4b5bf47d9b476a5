// Package errl wraps errors with the call stack of the place where they were
// first seen, so that logs point at the origin and not at the handler.
package errl

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf formats an error like fmt.Errorf (including %w) and attaches a stack trace.
func Errorf(format string, args ...any) error {
	return errors.WithStack(fmt.Errorf(format, args...))
}

// Error attaches a stack trace to err. It returns nil if err is nil.
func Error(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// Stack renders err with its stack trace, for debug logging.
func Stack(err error) string {
	return fmt.Sprintf("%+v", err)
}
