// File: settings/errors.go
package settings

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnsupportedFormat is returned when a file extension does not map
	// to a known serialization format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMissingParam is returned when a path template references a field
	// that is absent from the section's serialized shape.
	ErrMissingParam = errors.New("missing path parameter")

	// ErrEmptyParam is returned when a path parameter field is present but
	// nil or all-whitespace. Parameters are validated before any write.
	ErrEmptyParam = errors.New("empty path parameter")

	// ErrNotRegistered is returned when a section key is not known to the store.
	ErrNotRegistered = errors.New("section not registered")

	// ErrDuplicateKey is returned when two sections register the same key.
	ErrDuplicateKey = errors.New("duplicate section key")

	// ErrReservedKey is returned when a section tries to register the
	// version side-table key.
	ErrReservedKey = errors.New("reserved section key")
)

// serializationError wraps codec and decode-into-struct failures so callers
// can report them uniformly without inspecting the underlying library error.
func serializationError(context string, err error) error {
	return fmt.Errorf("serialization error in %s: %w", context, err)
}

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the package logger. Pass a silenced logger to disable
// the load/save diagnostics entirely.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}
