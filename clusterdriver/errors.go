package clusterdriver

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Error is the closed set of failures a Driver call can report: a thin sum
// type over the handful of failure modes a Driver can actually produce,
// wrapping whatever the underlying layer reported.
type Error struct {
	Kind  ErrorKind
	Cause error
}

// ErrorKind enumerates the ways a Driver call can fail.
type ErrorKind int

const (
	// NotEnoughResources means fewer DPUs were available than requested.
	NotEnoughResources ErrorKind = iota
	// IncorrectMemoryImageSize means a program section did not match the
	// DPU's memory geometry.
	IncorrectMemoryImageSize
	// InvalidCommandInState means a driver call was issued against a DPU
	// in a state that does not support it.
	InvalidCommandInState
	// LoadingError means the program loader rejected an image.
	LoadingError
	// LowLevelError wraps a failure from the underlying hardware/FFI
	// layer.
	LowLevelError
	// IOError wraps a failure performing local I/O (e.g. firmware file
	// access).
	IOError
)

func (e *Error) Error() string {
	if e.Cause != nil {
		// Cause already carries the kind prefix: Wrap ran it through
		// xerrors.Errorf before storing it.
		return e.Cause.Error()
	}
	return kindString(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Format makes %+v on an *Error print the frame at which Wrap/WrapIO
// annotated the underlying cause.
func (e *Error) Format(f fmt.State, c rune) { xerrors.FormatError(e, f, c) }

// FormatError implements xerrors.Formatter.
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Print(kindString(e.Kind))
	return e.Cause
}

func kindString(k ErrorKind) string {
	switch k {
	case NotEnoughResources:
		return "not enough resources"
	case IncorrectMemoryImageSize:
		return "incorrect memory image size"
	case InvalidCommandInState:
		return "invalid command in state"
	case LoadingError:
		return "loading error"
	case LowLevelError:
		return "low level error"
	case IOError:
		return "io error"
	default:
		return "cluster error"
	}
}

// Wrap returns a *Error of the given kind wrapping cause. The cause is
// run through xerrors.Errorf first so it carries a captured frame,
// giving operators a Driver-call-site stack trace on top of whatever
// the underlying collaborator (FFI layer, filesystem, network) reports.
func Wrap(kind ErrorKind, cause error) *Error {
	if cause != nil {
		cause = xerrors.Errorf("%s: %w", kindString(kind), cause)
	}
	return &Error{Kind: kind, Cause: cause}
}

// WrapIO wraps a plain I/O error as an IOError-kinded *Error.
func WrapIO(cause error) *Error {
	return Wrap(IOError, cause)
}
