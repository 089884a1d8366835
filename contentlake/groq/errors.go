package groq

import (
	"errors"
	"fmt"
)

// LexErrorKind classifies tokenization failures.
type LexErrorKind int

const (
	LexUnexpectedChar LexErrorKind = iota
	LexUnterminatedString
	LexInvalidNumber
)

// LexError is a tokenization failure. Tokenization does not resync.
type LexError struct {
	Kind   LexErrorKind
	Char   rune   // LexUnexpectedChar
	Text   string // LexInvalidNumber
	Offset int
}

func (e *LexError) Error() string {
	switch e.Kind {
	case LexUnexpectedChar:
		return fmt.Sprintf("unexpected character '%c' at position %d", e.Char, e.Offset)
	case LexUnterminatedString:
		return fmt.Sprintf("unterminated string starting at position %d", e.Offset)
	case LexInvalidNumber:
		return fmt.Sprintf("invalid number %q at position %d", e.Text, e.Offset)
	default:
		return fmt.Sprintf("lex error at position %d", e.Offset)
	}
}

// ParseErrorKind classifies parse failures.
type ParseErrorKind int

const (
	ParseLex ParseErrorKind = iota
	ParseUnexpectedToken
	ParseUnexpectedEOF
	ParseTooDeep
)

// ParseError is a parse failure. No partial tree is ever returned with it.
type ParseError struct {
	Kind     ParseErrorKind
	Lex      *LexError // ParseLex
	Found    string    // ParseUnexpectedToken
	Expected string    // ParseUnexpectedToken
	Offset   int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseLex:
		return "lex error: " + e.Lex.Error()
	case ParseUnexpectedToken:
		return fmt.Sprintf("unexpected token: %s, expected: %s (at position %d)", e.Found, e.Expected, e.Offset)
	case ParseUnexpectedEOF:
		return "unexpected end of input"
	case ParseTooDeep:
		return fmt.Sprintf("expression nesting too deep at position %d", e.Offset)
	default:
		return "parse error"
	}
}

func (e *ParseError) Unwrap() error {
	if e.Lex == nil {
		return nil
	}
	return e.Lex
}

// EvalErrorKind classifies evaluation failures.
type EvalErrorKind int

const (
	EvalTypeError EvalErrorKind = iota
	EvalUnsupported
	EvalTooDeep
)

// EvalError is an evaluation failure.
type EvalError struct {
	Kind    EvalErrorKind
	Message string // EvalTypeError
	Node    string // EvalUnsupported: the node kind that was reached
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case EvalTypeError:
		return "type error: " + e.Message
	case EvalUnsupported:
		if e.Node != "" {
			return "unsupported expression: " + e.Node
		}
		return "unsupported expression"
	case EvalTooDeep:
		return "expression nesting too deep"
	default:
		return "evaluation error"
	}
}

// TypeError returns an EvalError of kind EvalTypeError. Builtins use it to
// reject arguments.
func TypeError(format string, args ...any) *EvalError {
	return &EvalError{Kind: EvalTypeError, Message: fmt.Sprintf(format, args...)}
}

func unsupported(node string) *EvalError {
	return &EvalError{Kind: EvalUnsupported, Node: node}
}

// IsUnsupported reports whether err is an EvalError of kind EvalUnsupported.
func IsUnsupported(err error) bool {
	var e *EvalError
	return errors.As(err, &e) && e.Kind == EvalUnsupported
}

// ErrorOffset returns the source byte offset carried by a lex or parse error,
// or -1 when there is none.
func ErrorOffset(err error) int {
	var pe *ParseError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case ParseLex:
			return pe.Lex.Offset
		default:
			return pe.Offset
		}
	}
	var le *LexError
	if errors.As(err, &le) {
		return le.Offset
	}
	return -1
}
