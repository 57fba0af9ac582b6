package mvc

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrAbort is returned by a controller's Before hook to veto the action.
// The action and the After hook are skipped and dispatch reports no error.
var ErrAbort = errors.New("mvc: action aborted by before hook")

// Location is the source position where an Error was created.
type Location struct {
	File string
	Line int
}

// String returns the location as "file:line".
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a request-terminating failure carrying the HTTP status it maps to.
//
// An Error with a Title is a display error: it is shown to the user on the
// error page as-is. Errors without a Title are treated as unhandled and
// are either shown with diagnostics or logged, depending on configuration.
type Error struct {
	// Status is the HTTP status code (404, 405, 406, 500).
	Status int

	// Title is the heading of the user-facing error page.
	Title string

	// Message is a short description of the failure.
	Message string

	// Suggestion is an optional hint, e.g. the closest registered name.
	Suggestion string

	// Location is where the error was constructed.
	Location *Location

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += " (did you mean " + e.Suggestion + "?)"
	}
	switch {
	case e.Err == nil:
		return msg
	case msg == "":
		return e.Err.Error()
	default:
		return msg + ": " + e.Err.Error()
	}
}

// Text returns the user-facing message: Message, or the message of the
// wrapped error when Message is empty.
func (e *Error) Text() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Displayed reports whether the error should be rendered on the
// user-facing error page.
func (e *Error) Displayed() bool {
	return e.Title != ""
}

// WithSuggestion sets the suggestion hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// NotFound reports a missing route, controller, action or record (404).
func NotFound(format string, args ...any) *Error {
	return newError(http.StatusNotFound, "", fmt.Sprintf(format, args...))
}

// MethodNotAllowed reports a request made with the wrong HTTP verb (405).
func MethodNotAllowed(format string, args ...any) *Error {
	return newError(http.StatusMethodNotAllowed, "", fmt.Sprintf(format, args...))
}

// ValidationFailed reports a missing or duplicate required field (406).
func ValidationFailed(format string, args ...any) *Error {
	return newError(http.StatusNotAcceptable, "", fmt.Sprintf(format, args...))
}

// PersistenceFailure wraps a failed data-store operation (500).
func PersistenceFailure(title string, err error) *Error {
	return newError(http.StatusInternalServerError, title, "").Wrap(err)
}

// Internal wraps any other failure (500).
func Internal(err error) *Error {
	if err == nil {
		return newError(http.StatusInternalServerError, "", "internal error")
	}
	return newError(http.StatusInternalServerError, "", "").Wrap(err)
}

// Display builds a user-facing error shown with the given title and status.
func Display(title string, status int, message string) *Error {
	return newError(status, title, message)
}

// Titled returns a copy of err as a display error with the given title.
// Errors that are not *Error are wrapped as Internal first.
func Titled(title string, err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}
	out := *e
	out.Title = title
	return &out
}

// StatusOf returns the HTTP status an error maps to. Errors that are not
// *Error map to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func newError(status int, title, msg string) *Error {
	e := &Error{Status: status, Title: title, Message: msg}
	if _, file, line, ok := runtime.Caller(2); ok {
		e.Location = &Location{File: file, Line: line}
	}
	return e
}
