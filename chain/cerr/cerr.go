// Package cerr defines the error taxonomy shared across the module's
// components, so every layer from the block store up to the CLI can
// classify a failure the same way without string-matching messages.
package cerr

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error into one of the taxonomy's buckets.
type Kind int

const (
	// PathNotFound means a configured file (genesis, key, database
	// path) does not exist.
	PathNotFound Kind = iota
	// BadInput means a caller-supplied value is malformed or out of
	// range: unknown consensus variant, out-of-bounds epoch, malformed
	// hex, wrong VRF key type.
	BadInput
	// NotSynced means the block store's tip is too far behind
	// wall-clock time to answer the request.
	NotSynced
	// InsufficientHistory means a needed nonce or prev-hash has not
	// been stored yet (the stability window is not covered).
	InsufficientHistory
	// StorageIntegrity means the on-disk store holds something that
	// cannot be read back (a record or stored hash that fails to decode,
	// an unresolvable index entry) or a schema migration step failed.
	// The magic probe and the schema-version check do not report under
	// this kind: a file that is not SQLite is opened as bbolt, and a
	// schema version newer than the code's is accepted as is.
	StorageIntegrity
	// VrfError means a VRF proof failed to verify or a VRF key was
	// malformed.
	VrfError
	// IoError wraps any other I/O failure (disk, network).
	IoError
)

func (k Kind) String() string {
	switch k {
	case PathNotFound:
		return "PathNotFound"
	case BadInput:
		return "BadInput"
	case NotSynced:
		return "NotSynced"
	case InsufficientHistory:
		return "InsufficientHistory"
	case StorageIntegrity:
		return "StorageIntegrity"
	case VrfError:
		return "VrfError"
	case IoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is a classified, wrapped error. The underlying cause is
// preserved via github.com/pkg/errors so callers can still unwrap to the
// original I/O or parsing failure while the CLI boundary only needs
// Kind and Error() to render a response.
type Error struct {
	kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the error's taxonomy bucket, or IoError if err was not
// produced by this package (a conservative default: unclassified
// failures are treated as opaque I/O problems rather than silently
// matching a more specific, misleading bucket).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return IoError
}

// New wraps cause (which may be nil) with kind, annotated with msg.
func New(kind Kind, msg string, cause error) *Error {
	if cause != nil {
		cause = pkgerrors.Wrap(cause, msg)
	} else {
		cause = pkgerrors.New(msg)
	}
	return &Error{kind: kind, cause: cause}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return New(kind, msg, cause)
}
