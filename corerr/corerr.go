// Package corerr defines the core's closed set of error kinds and the
// propagation policy every subsystem wraps its failures into (spec §7):
// callers distinguish kinds with Is or KindOf (which look through wrapped
// errors), and recover the offending identifier/detail with errors.As
// against *Error.
package corerr

import (
	"errors"
	"fmt"
)

// Kind is one of the core's nine error kinds.
type Kind string

const (
	// BadInput marks caller-supplied data that is malformed: unknown
	// template, cyclic plan, missing fields. Surfaced; never retried.
	BadInput Kind = "bad_input"

	// AccessDenied marks a principal lacking rights over the resource it
	// addressed.
	AccessDenied Kind = "access_denied"

	// NotFound marks a referenced workflow/conversation/proposal/document
	// that does not exist.
	NotFound Kind = "not_found"

	// Transient marks a storage or network error deemed retriable.
	// Triggers step retry up to max_retries with exponential backoff.
	Transient Kind = "transient"

	// AgentFailed marks an agent that returned a failure result. The
	// owning step's retry policy applies.
	AgentFailed Kind = "agent_failed"

	// FatalConfig marks an unknown agent type or corrupt template. The
	// workflow fails outright; never retried.
	FatalConfig Kind = "fatal_config"

	// Cancelled marks cooperative cancellation. Not a failure: the
	// workflow reports status cancelled, not failed.
	Cancelled Kind = "cancelled"

	// ResolveDropped marks an edit operation the Edit Resolver could not
	// place onto the document. Non-fatal; other operations in the same
	// batch still proceed.
	ResolveDropped Kind = "resolve_dropped"

	// ContinuityInvalid marks a continuity validation result carrying
	// violations. Not an error in the propagation sense — returned as
	// data to the caller, never wrapped by this package on its own, but
	// kept here so callers have one vocabulary for all nine kinds.
	ContinuityInvalid Kind = "continuity_invalid"
)

// Retriable reports whether an error of this kind should be retried by a
// step's retry policy.
func (k Kind) Retriable() bool {
	return k == Transient || k == AgentFailed
}

// Error wraps an underlying cause with a Kind and the identifier of the
// resource or operation it concerns.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error of the given kind.
func New(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// Wrap is shorthand for New(kind, fmt.Sprintf(format, args...), cause):
// Detail is always the formatted string, and cause is kept as the
// unwrapped error.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	detail := fmt.Sprintf(format, args...)
	return New(kind, detail, cause)
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, reporting ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
