package domain

import "errors"

// Kind classifies a generation failure so the transport layer can pick a
// status code without inspecting error strings.
type Kind string

const (
	KindInput    Kind = "input"
	KindUpstream Kind = "upstream"
	KindProtocol Kind = "protocol"
	KindTimeout  Kind = "timeout"
	KindPublish  Kind = "publish"
	KindInternal Kind = "internal"
)

// Error carries a failure kind and a short user-safe diagnostic alongside the
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E constructs a kinded error wrapping cause, which may be nil.
func E(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the kind from err, defaulting to KindInternal for errors
// produced outside the pipeline.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the user-safe diagnostic of err, or a generic fallback
// when err was not produced by the pipeline.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "unexpected error"
}
