package contentlake

import (
	"errors"
	"fmt"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/contentlake/ops"
)

type ErrorKind string

const (
	ErrIO         ErrorKind = "io"
	ErrSQL        ErrorKind = "sql"
	ErrSchema     ErrorKind = "schema"
	ErrQueryParse ErrorKind = "query_parse"
	ErrQueryEval  ErrorKind = "query_eval"
	ErrCursor     ErrorKind = "cursor"
	ErrNotFound   ErrorKind = "not_found"
	ErrConflict   ErrorKind = "conflict"
	ErrValidation ErrorKind = "validation"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func ValidationError(field, msg string, cause error) *Error {
	return &Error{Kind: ErrValidation, Field: field, Message: msg, Cause: cause}
}

func NotFoundError(id string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("document not found: %s", id)}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" if it is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// classify maps errors from the lower layers onto facade kinds.
func classify(msg string, err error) *Error {
	var (
		pe *groq.ParseError
		ee *groq.EvalError
	)
	switch {
	case errors.As(err, &pe):
		return Wrap(ErrQueryParse, msg, err)
	case errors.As(err, &ee):
		return Wrap(ErrQueryEval, msg, err)
	case errors.Is(err, ops.ErrInvalidCursor), errors.Is(err, ops.ErrCursorMismatch):
		return Wrap(ErrCursor, msg, err)
	case errors.Is(err, ops.ErrConflict), errors.Is(err, ops.ErrRevisionMismatch):
		return Wrap(ErrConflict, msg, err)
	case errors.Is(err, ops.ErrNotFound):
		return Wrap(ErrNotFound, msg, err)
	case errors.Is(err, document.ErrMissingID), errors.Is(err, document.ErrEmptyID):
		return ValidationError(document.FieldID, msg, err)
	case errors.Is(err, document.ErrMissingType), errors.Is(err, document.ErrEmptyType):
		return ValidationError(document.FieldType, msg, err)
	}
	return Wrap(ErrSQL, msg, err)
}
