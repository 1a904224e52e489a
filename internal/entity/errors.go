package entity

import (
	"errors"
	"net/http"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code that reports errors of this kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error with an explicit kind and status code.
type Error struct {
	Kind    Kind
	Status  int
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

func newError(kind Kind, msg string, err error) *Error {
	return &Error{
		Kind:    kind,
		Status:  kind.Status(),
		Message: msg,
		Err:     err,
	}
}

// NewValidationError reports malformed client input.
func NewValidationError(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

// NewUpstreamError reports a failing dependency such as the store or the embedding model.
func NewUpstreamError(msg string, err error) *Error {
	return newError(KindUpstream, msg, err)
}

var (
	// ErrLinkNotFound is returned when no link matches the requested id or short code.
	ErrLinkNotFound = newError(KindNotFound, "link not found", nil)
	// ErrShortCodeExists is returned when a short code is already taken by another link.
	ErrShortCodeExists = newError(KindConflict, "short code already exists", nil)
	// ErrEmptyQuery is returned when a search is requested without a query.
	ErrEmptyQuery = NewValidationError("query parameter 'q' is required")
	// ErrInvalidLinkID is returned when a link id is not a positive integer.
	ErrInvalidLinkID = NewValidationError("invalid link id")
	// ErrInvalidLimit is returned when a limit is outside the accepted bounds.
	ErrInvalidLimit = NewValidationError("limit must be between 1 and 100")
)

// KindOf returns the kind of the first *Error in err's chain, or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
