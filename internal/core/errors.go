package core

import (
	"errors"
	"fmt"
)

var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrBadRequest           = errors.New("bad request")
	ErrNotFound             = errors.New("not found")
	ErrRateLimited          = errors.New("rate limited")
	ErrPaymentRequired      = errors.New("payment required")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrUpstreamFailure      = errors.New("upstream failure")
	ErrPersistenceFailure   = errors.New("persistence failure")
)

// Error attaches a short caller-facing message to one of the sentinel kinds
// above. errors.Is matches both the kind and the wrapped cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Wrap(kind error, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func BadRequest(msg string) error {
	return &Error{Kind: ErrBadRequest, Msg: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func Persistence(msg string, err error) error {
	return &Error{Kind: ErrPersistenceFailure, Msg: msg, Err: err}
}

// ErrorMessage returns the caller-facing message of err, or "" if it carries none.
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

// UpstreamError is returned by the completion client for any non-success
// gateway response. Kind is ErrRateLimited, ErrPaymentRequired or
// ErrUpstreamFailure.
type UpstreamError struct {
	Kind   error
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%v: gateway http %d: %s", e.Kind, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Kind }

// PartialWriteError reports a syllabus row that was created but whose topics
// could not be stored and whose removal also failed.
type PartialWriteError struct {
	SyllabusID string
	Err        error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("orphan syllabus %s left behind: %v", e.SyllabusID, e.Err)
}

func (e *PartialWriteError) Unwrap() []error {
	return []error{ErrPersistenceFailure, e.Err}
}
