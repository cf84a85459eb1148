// Package etlerr defines the failure taxonomy shared by the pipeline stages.
//
// Every stage reports hard failures as an *Error carrying a Reason code and
// the underlying cause. Reason codes are strings so they log and serialize
// naturally; callers match them with errors.Is against the exported sentinels
// or with ReasonOf.
package etlerr

import (
	"errors"
	"fmt"
)

// Reason identifies a failure condition of one pipeline stage.
type Reason string

const (
	// Extraction.

	// SourceNotFound indicates the source path does not resolve to a readable file.
	SourceNotFound Reason = "SOURCE_NOT_FOUND"
	// UnreadableSource indicates no candidate encoding produced tabular content.
	UnreadableSource Reason = "UNREADABLE_SOURCE"
	// EmptySource indicates the source parsed to zero data rows.
	EmptySource Reason = "EMPTY_SOURCE"

	// Transformation.

	// EmptyInput indicates the transformer received a nil or empty dataset.
	EmptyInput Reason = "EMPTY_INPUT"
	// EmptyResult indicates every row was removed by the cleaning stages.
	EmptyResult Reason = "EMPTY_RESULT"

	// Load.

	// ConnectFailure indicates the store could not be reached or failed its liveness check.
	ConnectFailure Reason = "CONNECT_FAILURE"
	// NothingToLoad indicates an empty dataset was handed to the loader.
	NothingToLoad Reason = "NOTHING_TO_LOAD"
	// LoadFailure indicates the write failed and was rolled back.
	LoadFailure Reason = "LOAD_FAILURE"

	// Unexpected marks a fault recovered by the orchestrator (a panic).
	Unexpected Reason = "UNEXPECTED"
)

// Error is a stage failure. It wraps the cause so errors.Is/As keep working
// against driver and filesystem errors.
type Error struct {
	Reason Reason
	Err    error
}

// New returns an *Error for reason with a formatted message as its cause.
func New(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Err: fmt.Errorf(format, args...)}
}

// Wrap returns an *Error for reason wrapping err. A nil err still yields a
// non-nil *Error so callers can signal reason-only failures.
func Wrap(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same Reason, so that
// errors.Is(err, etlerr.ErrSourceNotFound) works for any wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Reason == e.Reason && t.Err == nil
	}
	return false
}

// Sentinels for errors.Is matching.
var (
	ErrSourceNotFound   = &Error{Reason: SourceNotFound}
	ErrUnreadableSource = &Error{Reason: UnreadableSource}
	ErrEmptySource      = &Error{Reason: EmptySource}
	ErrEmptyInput       = &Error{Reason: EmptyInput}
	ErrEmptyResult      = &Error{Reason: EmptyResult}
	ErrConnectFailure   = &Error{Reason: ConnectFailure}
	ErrNothingToLoad    = &Error{Reason: NothingToLoad}
	ErrLoadFailure      = &Error{Reason: LoadFailure}
)

// ReasonOf extracts the Reason from err. Errors that carry no *Error in their
// chain report Unexpected; a nil error reports the empty Reason.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return Unexpected
}
