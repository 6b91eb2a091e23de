// Package errs defines the tagged error kinds shared across phpp's
// resolver, installer, and autoload pipeline.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which of phpp's known failure modes an error represents.
type Kind int

const (
	// Unknown is the zero value; Of never constructs an error with this kind.
	Unknown Kind = iota
	// Transport indicates the HTTP layer failed.
	Transport
	// MetadataMissing indicates the registry returned non-2xx for a package.
	MetadataMissing
	// MalformedVersion indicates a version string could not be parsed.
	MalformedVersion
	// MalformedConstraint indicates a constraint expression could not be parsed.
	MalformedConstraint
	// PlatformIncompatible indicates a runtime version or extension requirement was unmet.
	PlatformIncompatible
	// RuntimeDetectionFailed indicates the PHP runtime probe could not be invoked or parsed.
	RuntimeDetectionFailed
	// LocalIo indicates a filesystem, archive, or cache write error.
	LocalIo
	// MalformedMetadata indicates registry metadata JSON failed to parse.
	MalformedMetadata
	// NoHome indicates the per-user cache or config root could not be located.
	NoHome
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "Transport"
	case MetadataMissing:
		return "MetadataMissing"
	case MalformedVersion:
		return "MalformedVersion"
	case MalformedConstraint:
		return "MalformedConstraint"
	case PlatformIncompatible:
		return "PlatformIncompatible"
	case RuntimeDetectionFailed:
		return "RuntimeDetectionFailed"
	case LocalIo:
		return "LocalIo"
	case MalformedMetadata:
		return "MalformedMetadata"
	case NoHome:
		return "NoHome"
	default:
		return "Unknown"
	}
}

// Error is a kind-tagged error. The underlying cause is built with
// github.com/pkg/errors so the chain keeps its stack trace and stays
// walkable via errors.Cause/errors.Unwrap.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.err)
}

// Unwrap exposes the wrapped cause for errors.As/errors.Is.
func (e *Error) Unwrap() error { return e.err }

// Cause exposes the root cause for github.com/pkg/errors.Cause.
func (e *Error) Cause() error { return errors.Cause(e.err) }

// Of constructs a new kind-tagged error with a formatted message.
func Of(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap tags err with kind, preserving it as the cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errors.Wrapf(err, format, args...)}
}

// Is reports whether err (or something it wraps) is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
