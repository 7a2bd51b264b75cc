// Package errors defines the failure taxonomy shared by every pipeline stage.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. The set is closed.
type Kind int

const (
	// Unclassified covers anything not listed below, including sink
	// conflicts and unexpected store responses.
	Unclassified Kind = iota
	// TransportFailure means a network-level fetch or write failed.
	TransportFailure
	// IOFailure means a local file could not be opened or read.
	IOFailure
	// FormatFailure means bytes could not be parsed into the expected shape.
	FormatFailure
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case IOFailure:
		return "io failure"
	case FormatFailure:
		return "format failure"
	default:
		return "unclassified"
	}
}

// Error is a classified failure
type Error struct {
	Kind     Kind     `json:"kind"`
	Messages []string `json:"messages"`
	Err      error    `json:"-"`
}

// Error renders the kind, the messages (outermost first) and the cause.
func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Messages)+2)
	parts = append(parts, e.Kind.String())
	for i := len(e.Messages) - 1; i >= 0; i-- {
		parts = append(parts, e.Messages[i])
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind
func New(kind Kind, msg string, args ...any) error {
	return &Error{
		Kind:     kind,
		Messages: []string{fmt.Sprintf(msg, args...)},
	}
}

// Wrap classifies err. A nil err stays nil. If err already carries a Kind
// the kind is kept and msg is only added as context, so a failure is never
// reclassified on its way up.
func Wrap(err error, kind Kind, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if stderrors.As(err, &existing) {
		wrapped := &Error{
			Kind:     existing.Kind,
			Messages: append([]string(nil), existing.Messages...),
			Err:      existing.Err,
		}
		if msg != "" {
			wrapped.Messages = append(wrapped.Messages, fmt.Sprintf(msg, args...))
		}
		return wrapped
	}
	e := &Error{
		Kind: kind,
		Err:  err,
	}
	if msg != "" {
		e.Messages = append(e.Messages, fmt.Sprintf(msg, args...))
	}
	return e
}

// KindOf reports the Kind carried by err. Errors that were never classified
// are Unclassified.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unclassified
}

// Is reports whether err is a non-nil error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
